// Package pricing holds the price and discount rules shared by cart,
// coupon validation and checkout. Everything here is pure.
package pricing

import (
	"sort"
	"time"

	"go-marketplace-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var cent = decimal.New(1, -2)

type Source string

const (
	SourceFlashSale Source = "flash_sale"
	SourceDiscount  Source = "discount"
	SourceRegular   Source = "regular"
)

type Quote struct {
	Price  decimal.Decimal `json:"price"`
	Source Source          `json:"source"`
}

// Effective resolves the unit price of a variation at now. flashPrice is the
// lowest running flash sale price for the variation, nil when none.
func Effective(v *model.ProductVariation, now time.Time, flashPrice *decimal.Decimal) Quote {
	if flashPrice != nil {
		return Quote{Price: *flashPrice, Source: SourceFlashSale}
	}
	if discountActive(v, now) {
		return Quote{Price: v.DiscountPrice.Decimal, Source: SourceDiscount}
	}
	return Quote{Price: v.Price, Source: SourceRegular}
}

func discountActive(v *model.ProductVariation, now time.Time) bool {
	if !v.DiscountPrice.Valid {
		return false
	}
	if v.DiscountStart != nil && now.Before(*v.DiscountStart) {
		return false
	}
	if v.DiscountEnd != nil && !now.Before(*v.DiscountEnd) {
		return false
	}
	return true
}

// Annotate fills EffectivePrice and PriceSource on each variation.
func Annotate(variations []model.ProductVariation, now time.Time, flashPrices map[uuid.UUID]decimal.Decimal) {
	for i := range variations {
		var flash *decimal.Decimal
		if p, ok := flashPrices[variations[i].ID]; ok {
			flash = &p
		}
		q := Effective(&variations[i], now, flash)
		variations[i].EffectivePrice = &q.Price
		variations[i].PriceSource = string(q.Source)
	}
}

// Line is one priced cart line.
type Line struct {
	VariationID uuid.UUID
	ProductID   uuid.UUID
	StoreID     uuid.UUID
	UnitPrice   decimal.Decimal
	Quantity    int
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Allocate splits amount across weights pro rata in whole cents. Shares
// are truncated first and the leftover cents go to the largest remainders,
// never lifting a share above its own weight. The shares always add up to
// amount; whatever cannot be placed lands on the last share.
func Allocate(amount decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	if len(weights) == 0 {
		return shares
	}
	for i := range shares {
		shares[i] = decimal.Zero
	}

	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	last := len(weights) - 1
	if amount.IsZero() || !sum.IsPositive() {
		shares[last] = amount
		return shares
	}

	remainders := make([]decimal.Decimal, len(weights))
	left := amount
	for i, w := range weights {
		exact := amount.Mul(w).Div(sum)
		shares[i] = exact.Truncate(2)
		remainders[i] = exact.Sub(shares[i])
		left = left.Sub(shares[i])
	}

	// Largest remainder first; ties go to the later share.
	order := make([]int, len(weights))
	for i := range order {
		order[i] = last - i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})

	for _, i := range order {
		if left.LessThan(cent) {
			break
		}
		if shares[i].Add(cent).GreaterThan(weights[i]) {
			continue
		}
		shares[i] = shares[i].Add(cent)
		left = left.Sub(cent)
	}
	if !left.IsZero() {
		shares[last] = shares[last].Add(left)
	}
	return shares
}
