package pricing

import (
	"time"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponRevoked       = apperror.BadRequest("coupon has been revoked")
	ErrCouponNotStarted    = apperror.BadRequest("coupon is not active yet")
	ErrCouponExpired       = apperror.BadRequest("coupon has expired")
	ErrCouponExhausted     = apperror.BadRequest("coupon usage limit reached")
	ErrCouponMinOrder      = apperror.BadRequest("order does not reach the coupon minimum amount")
	ErrCouponNotApplicable = apperror.BadRequest("coupon does not apply to any item in the cart")
	ErrCreditRevoked       = apperror.BadRequest("credit code has been revoked")
	ErrCreditExpired       = apperror.BadRequest("credit code has expired")
	ErrCreditExhausted     = apperror.BadRequest("credit code usage limit reached")
	ErrCreditWrongUser     = apperror.BadRequest("credit code belongs to another user")
	ErrCreditAlreadyUsed   = apperror.BadRequest("credit code already used")
)

// CouponResult is the outcome of applying a coupon to a set of lines.
type CouponResult struct {
	Discount decimal.Decimal
	// Eligible holds indexes into the lines passed to ApplyCoupon.
	Eligible []int
	// LineDiscounts has one entry per input line; ineligible lines get zero.
	LineDiscounts []decimal.Decimal
}

// EligibleLines returns the indexes of the lines the coupon discounts.
func EligibleLines(c *model.Coupon, userID uuid.UUID, lines []Line) []int {
	var idx []int
	switch c.AppliesTo {
	case model.ScopeUser:
		for _, u := range c.Users {
			if u.ID == userID {
				for i := range lines {
					idx = append(idx, i)
				}
				break
			}
		}
	case model.ScopeStore:
		stores := make(map[uuid.UUID]bool, len(c.Stores))
		for _, s := range c.Stores {
			stores[s.ID] = true
		}
		for i, l := range lines {
			if stores[l.StoreID] {
				idx = append(idx, i)
			}
		}
	case model.ScopeProduct:
		products := make(map[uuid.UUID]bool, len(c.Products))
		for _, p := range c.Products {
			products[p.ID] = true
		}
		for i, l := range lines {
			if products[l.ProductID] {
				idx = append(idx, i)
			}
		}
	default:
		for i := range lines {
			idx = append(idx, i)
		}
	}
	return idx
}

// CouponDiscount computes the discount on an eligible subtotal.
func CouponDiscount(c *model.Coupon, eligibleSubtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch c.DiscountType {
	case model.DiscountPercentage:
		discount = eligibleSubtotal.Mul(c.Value).Div(decimal.NewFromInt(100))
		if c.MaxDiscount.Valid && discount.GreaterThan(c.MaxDiscount.Decimal) {
			discount = c.MaxDiscount.Decimal
		}
	default:
		discount = decimal.Min(c.Value, eligibleSubtotal)
	}
	return discount.Round(2)
}

// CheckCoupon reports why the coupon cannot be used at now, or nil.
func CheckCoupon(c *model.Coupon, now time.Time) error {
	switch {
	case c.IsRevoked:
		return ErrCouponRevoked
	case now.Before(c.StartAt):
		return ErrCouponNotStarted
	case !now.Before(c.EndAt):
		return ErrCouponExpired
	case c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit:
		return ErrCouponExhausted
	}
	return nil
}

// ApplyCoupon validates the coupon against the lines and spreads the
// discount over the eligible ones.
func ApplyCoupon(c *model.Coupon, userID uuid.UUID, lines []Line, now time.Time) (*CouponResult, error) {
	if err := CheckCoupon(c, now); err != nil {
		return nil, err
	}
	if Subtotal(lines).LessThan(c.MinOrderAmount) {
		return nil, ErrCouponMinOrder
	}
	eligible := EligibleLines(c, userID, lines)
	if len(eligible) == 0 {
		return nil, ErrCouponNotApplicable
	}

	weights := make([]decimal.Decimal, len(eligible))
	eligibleSubtotal := decimal.Zero
	for i, idx := range eligible {
		weights[i] = lines[idx].Total()
		eligibleSubtotal = eligibleSubtotal.Add(weights[i])
	}
	discount := CouponDiscount(c, eligibleSubtotal)

	result := &CouponResult{
		Discount:      discount,
		Eligible:      eligible,
		LineDiscounts: make([]decimal.Decimal, len(lines)),
	}
	for i := range result.LineDiscounts {
		result.LineDiscounts[i] = decimal.Zero
	}
	for i, share := range Allocate(discount, weights) {
		result.LineDiscounts[eligible[i]] = share
	}
	return result, nil
}

// CheckCreditCode reports why userID cannot redeem the code, or nil.
func CheckCreditCode(code *model.CreditCode, userID uuid.UUID, now time.Time, alreadyUsed bool) error {
	switch {
	case code.IsRevoked:
		return ErrCreditRevoked
	case code.ExpiresAt != nil && !now.Before(*code.ExpiresAt):
		return ErrCreditExpired
	case code.UserID != nil && *code.UserID != userID:
		return ErrCreditWrongUser
	case code.UsageLimit > 0 && code.UsedCount >= code.UsageLimit:
		return ErrCreditExhausted
	case alreadyUsed:
		return ErrCreditAlreadyUsed
	}
	return nil
}

// CreditAmount is what the code takes off a remaining total.
func CreditAmount(code *model.CreditCode, remaining decimal.Decimal) decimal.Decimal {
	if !remaining.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(code.Amount, remaining)
}
