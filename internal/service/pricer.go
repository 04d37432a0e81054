package service

import (
	"time"

	"go-marketplace-api/internal/model"
	"go-marketplace-api/internal/pricing"
	"go-marketplace-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pricer looks up running flash sales and resolves effective prices.
type Pricer struct {
	flashRepo repository.FlashSaleRepository
}

func NewPricer(flashRepo repository.FlashSaleRepository) *Pricer {
	return &Pricer{flashRepo: flashRepo}
}

// WithTx prices through tx.
func (p *Pricer) WithTx(tx *gorm.DB) *Pricer {
	return &Pricer{flashRepo: p.flashRepo.WithTx(tx)}
}

func (p *Pricer) Quotes(variations []model.ProductVariation, at time.Time) (map[uuid.UUID]pricing.Quote, error) {
	flash, err := p.flashPrices(variations, at)
	if err != nil {
		return nil, err
	}
	quotes := make(map[uuid.UUID]pricing.Quote, len(variations))
	for i := range variations {
		var flashPrice *decimal.Decimal
		if price, ok := flash[variations[i].ID]; ok {
			flashPrice = &price
		}
		quotes[variations[i].ID] = pricing.Effective(&variations[i], at, flashPrice)
	}
	return quotes, nil
}

// Annotate sets EffectivePrice and PriceSource on the variations.
func (p *Pricer) Annotate(variations []model.ProductVariation, at time.Time) error {
	flash, err := p.flashPrices(variations, at)
	if err != nil {
		return err
	}
	pricing.Annotate(variations, at, flash)
	return nil
}

func (p *Pricer) AnnotateProducts(products []model.Product, at time.Time) error {
	var all []model.ProductVariation
	for _, product := range products {
		all = append(all, product.Variations...)
	}
	flash, err := p.flashPrices(all, at)
	if err != nil {
		return err
	}
	for i := range products {
		pricing.Annotate(products[i].Variations, at, flash)
	}
	return nil
}

func (p *Pricer) flashPrices(variations []model.ProductVariation, at time.Time) (map[uuid.UUID]decimal.Decimal, error) {
	ids := make([]uuid.UUID, len(variations))
	for i, v := range variations {
		ids[i] = v.ID
	}
	return p.flashRepo.ActivePrices(ids, at)
}
