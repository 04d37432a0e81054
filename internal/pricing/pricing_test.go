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

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestEffective(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	flash := d("5.00")

	base := func() model.ProductVariation {
		return model.ProductVariation{Price: d("20.00")}
	}
	withDiscount := func(start, end *time.Time) model.ProductVariation {
		v := base()
		v.DiscountPrice = decimal.NewNullDecimal(d("15.00"))
		v.DiscountStart = start
		v.DiscountEnd = end
		return v
	}

	tests := []struct {
		name      string
		variation model.ProductVariation
		flash     *decimal.Decimal
		want      string
		source    Source
	}{
		{"regular", base(), nil, "20", SourceRegular},
		{"open discount window", withDiscount(nil, nil), nil, "15", SourceDiscount},
		{"inside discount window", withDiscount(&past, &future), nil, "15", SourceDiscount},
		{"discount not started", withDiscount(&future, nil), nil, "20", SourceRegular},
		{"discount ended", withDiscount(nil, &past), nil, "20", SourceRegular},
		{"discount end is exclusive", withDiscount(nil, &now), nil, "20", SourceRegular},
		{"flash beats discount", withDiscount(nil, nil), &flash, "5", SourceFlashSale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Effective(&tt.variation, now, tt.flash)
			assert.Equal(t, tt.want, q.Price.String())
			assert.Equal(t, tt.source, q.Source)
		})
	}
}

func TestAnnotate(t *testing.T) {
	now := time.Now()
	a := model.ProductVariation{Price: d("10")}
	a.ID = uuid.New()
	b := model.ProductVariation{Price: d("12")}
	b.ID = uuid.New()
	variations := []model.ProductVariation{a, b}

	Annotate(variations, now, map[uuid.UUID]decimal.Decimal{b.ID: d("8")})

	require.NotNil(t, variations[0].EffectivePrice)
	assert.Equal(t, "10", variations[0].EffectivePrice.String())
	assert.Equal(t, string(SourceRegular), variations[0].PriceSource)
	assert.Equal(t, "8", variations[1].EffectivePrice.String())
	assert.Equal(t, string(SourceFlashSale), variations[1].PriceSource)
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		weights []string
		want    []string
	}{
		{"even split", "10", []string{"50", "50"}, []string{"5", "5"}},
		{"remainder to last", "10", []string{"1", "1", "1"}, []string{"3.33", "3.33", "3.34"}},
		{"proportional", "9", []string{"100", "200"}, []string{"3", "6"}},
		{"zero amount", "0", []string{"10", "20"}, []string{"0", "0"}},
		{"zero weights", "4", []string{"0", "0"}, []string{"0", "4"}},
		{"single", "7.77", []string{"3"}, []string{"7.77"}},
		{"near full discount", "29.99", []string{"10", "10", "10"}, []string{"9.99", "10", "10"}},
		{"full discount", "30", []string{"10", "10", "10"}, []string{"10", "10", "10"}},
		{"largest remainder", "0.10", []string{"2", "1", "1"}, []string{"0.05", "0.02", "0.03"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weights := make([]decimal.Decimal, len(tt.weights))
			for i, w := range tt.weights {
				weights[i] = d(w)
			}
			shares := Allocate(d(tt.amount), weights)
			require.Len(t, shares, len(tt.want))

			sum := decimal.Zero
			for i, share := range shares {
				assert.True(t, d(tt.want[i]).Equal(share), "share %d: want %s got %s", i, tt.want[i], share)
				sum = sum.Add(share)
			}
			assert.True(t, sum.Equal(d(tt.amount)))
		})
	}

	assert.Empty(t, Allocate(d("5"), nil))
}

func TestAllocateNeverExceedsWeight(t *testing.T) {
	weights := []decimal.Decimal{d("10"), d("10"), d("10"), d("0.07"), d("33.33")}
	for _, amount := range []string{"0.01", "0.05", "29.99", "63.39", "63.40"} {
		shares := Allocate(d(amount), weights)
		sum := decimal.Zero
		for i, share := range shares {
			assert.False(t, share.IsNegative(), "amount %s share %d negative: %s", amount, i, share)
			assert.False(t, share.GreaterThan(weights[i]), "amount %s share %d (%s) exceeds weight %s", amount, i, share, weights[i])
			sum = sum.Add(share)
		}
		assert.True(t, sum.Equal(d(amount)), "amount %s: shares add up to %s", amount, sum)
	}
}
