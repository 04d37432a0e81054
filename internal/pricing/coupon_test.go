package pricing

import (
	"testing"
	"time"

	"go-marketplace-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newCoupon(kind model.DiscountType, value string) *model.Coupon {
	return &model.Coupon{
		Code:         "SAVE",
		DiscountType: kind,
		Value:        d(value),
		AppliesTo:    model.ScopeAll,
		StartAt:      now.Add(-24 * time.Hour),
		EndAt:        now.Add(24 * time.Hour),
	}
}

func TestCouponDiscount(t *testing.T) {
	capped := newCoupon(model.DiscountPercentage, "50")
	capped.MaxDiscount = decimal.NewNullDecimal(d("20"))

	tests := []struct {
		name     string
		coupon   *model.Coupon
		subtotal string
		want     string
	}{
		{"percentage", newCoupon(model.DiscountPercentage, "10"), "150", "15"},
		{"percentage rounds to cents", newCoupon(model.DiscountPercentage, "15"), "33.33", "5"},
		{"percentage capped", capped, "100", "20"},
		{"fixed below subtotal", newCoupon(model.DiscountFixed, "25"), "100", "25"},
		{"fixed above subtotal", newCoupon(model.DiscountFixed, "25"), "18.50", "18.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CouponDiscount(tt.coupon, d(tt.subtotal))
			assert.True(t, d(tt.want).Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestCheckCoupon(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *model.Coupon)
		want   error
	}{
		{"usable", func(c *model.Coupon) {}, nil},
		{"revoked", func(c *model.Coupon) { c.IsRevoked = true }, ErrCouponRevoked},
		{"not started", func(c *model.Coupon) { c.StartAt = now.Add(time.Minute) }, ErrCouponNotStarted},
		{"expired", func(c *model.Coupon) { c.EndAt = now }, ErrCouponExpired},
		{"exhausted", func(c *model.Coupon) { c.UsageLimit, c.UsedCount = 2, 2 }, ErrCouponExhausted},
		{"unlimited", func(c *model.Coupon) { c.UsageLimit, c.UsedCount = 0, 500 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCoupon(model.DiscountFixed, "5")
			tt.mutate(c)
			assert.Equal(t, tt.want, CheckCoupon(c, now))
		})
	}
}

func TestApplyCoupon(t *testing.T) {
	storeA, storeB := uuid.New(), uuid.New()
	productA, productB := uuid.New(), uuid.New()
	buyer := uuid.New()

	lines := []Line{
		{ProductID: productA, StoreID: storeA, UnitPrice: d("10"), Quantity: 3}, // 30
		{ProductID: productB, StoreID: storeB, UnitPrice: d("35"), Quantity: 2}, // 70
	}

	t.Run("all lines share a percentage discount", func(t *testing.T) {
		res, err := ApplyCoupon(newCoupon(model.DiscountPercentage, "10"), buyer, lines, now)
		require.NoError(t, err)
		assert.Equal(t, "10", res.Discount.String())
		assert.Equal(t, []int{0, 1}, res.Eligible)
		assert.Equal(t, "3", res.LineDiscounts[0].String())
		assert.Equal(t, "7", res.LineDiscounts[1].String())
	})

	t.Run("store scope only touches that store", func(t *testing.T) {
		c := newCoupon(model.DiscountFixed, "100")
		c.AppliesTo = model.ScopeStore
		c.Stores = []model.Store{{BaseModel: model.BaseModel{ID: storeA}}}

		res, err := ApplyCoupon(c, buyer, lines, now)
		require.NoError(t, err)
		assert.Equal(t, "30", res.Discount.String())
		assert.True(t, res.LineDiscounts[1].IsZero())
	})

	t.Run("product scope", func(t *testing.T) {
		c := newCoupon(model.DiscountPercentage, "50")
		c.AppliesTo = model.ScopeProduct
		c.Products = []model.Product{{BaseModel: model.BaseModel{ID: productB}}}

		res, err := ApplyCoupon(c, buyer, lines, now)
		require.NoError(t, err)
		assert.Equal(t, "35", res.Discount.String())
		assert.Equal(t, []int{1}, res.Eligible)
	})

	t.Run("user scope for a listed user", func(t *testing.T) {
		c := newCoupon(model.DiscountFixed, "5")
		c.AppliesTo = model.ScopeUser
		c.Users = []model.User{{BaseModel: model.BaseModel{ID: buyer}}}

		res, err := ApplyCoupon(c, buyer, lines, now)
		require.NoError(t, err)
		assert.Len(t, res.Eligible, 2)
	})

	t.Run("user scope for anyone else", func(t *testing.T) {
		c := newCoupon(model.DiscountFixed, "5")
		c.AppliesTo = model.ScopeUser
		c.Users = []model.User{{BaseModel: model.BaseModel{ID: uuid.New()}}}

		_, err := ApplyCoupon(c, buyer, lines, now)
		assert.ErrorIs(t, err, ErrCouponNotApplicable)
	})

	t.Run("minimum order amount", func(t *testing.T) {
		c := newCoupon(model.DiscountFixed, "5")
		c.MinOrderAmount = d("100.01")

		_, err := ApplyCoupon(c, buyer, lines, now)
		assert.ErrorIs(t, err, ErrCouponMinOrder)
	})
}

func TestCheckCreditCode(t *testing.T) {
	owner := uuid.New()
	past := now.Add(-time.Second)

	tests := []struct {
		name string
		code model.CreditCode
		user uuid.UUID
		used bool
		want error
	}{
		{"usable by anyone", model.CreditCode{UsageLimit: 1}, uuid.New(), false, nil},
		{"revoked", model.CreditCode{IsRevoked: true}, owner, false, ErrCreditRevoked},
		{"expired", model.CreditCode{ExpiresAt: &past}, owner, false, ErrCreditExpired},
		{"other user", model.CreditCode{UserID: &owner}, uuid.New(), false, ErrCreditWrongUser},
		{"exhausted", model.CreditCode{UsageLimit: 3, UsedCount: 3}, owner, false, ErrCreditExhausted},
		{"already used", model.CreditCode{UsageLimit: 3}, owner, true, ErrCreditAlreadyUsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckCreditCode(&tt.code, tt.user, now, tt.used))
		})
	}
}

func TestCreditAmount(t *testing.T) {
	code := &model.CreditCode{Amount: d("25")}
	assert.Equal(t, "25", CreditAmount(code, d("80")).String())
	assert.Equal(t, "12.5", CreditAmount(code, d("12.50")).String())
	assert.True(t, CreditAmount(code, decimal.Zero).IsZero())
}
