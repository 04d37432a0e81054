package validator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type priceRequest struct {
	VariationID uuid.UUID       `validate:"uuid_required"`
	Price       decimal.Decimal `validate:"gt=0"`
	Percent     decimal.Decimal `validate:"gte=0,lte=100"`
	Name        string          `validate:"required"`
}

func TestValidateStruct(t *testing.T) {
	valid := priceRequest{
		VariationID: uuid.New(),
		Price:       decimal.RequireFromString("19.99"),
		Percent:     decimal.NewFromInt(15),
		Name:        "Tee",
	}

	tests := []struct {
		name    string
		mutate  func(r *priceRequest)
		wantTag string
	}{
		{"valid", func(r *priceRequest) {}, ""},
		{"nil uuid", func(r *priceRequest) { r.VariationID = uuid.Nil }, "uuid_required"},
		{"zero price", func(r *priceRequest) { r.Price = decimal.Zero }, "gt"},
		{"percent above 100", func(r *priceRequest) { r.Percent = decimal.NewFromInt(101) }, "lte"},
		{"missing name", func(r *priceRequest) { r.Name = "" }, "required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			errs := ValidateStruct(&req)
			if tt.wantTag == "" {
				assert.Empty(t, errs)
				assert.NoError(t, Validate(&req))
				return
			}
			if assert.Len(t, errs, 1) {
				assert.Equal(t, tt.wantTag, errs[0].Tag)
			}
			assert.Error(t, Validate(&req))
		})
	}
}
