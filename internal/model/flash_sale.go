package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FlashSale overrides variation prices inside [StartAt, EndAt).
type FlashSale struct {
	BaseModel
	Name     string          `gorm:"type:varchar(150);not null" json:"name"`
	StartAt  time.Time       `gorm:"not null;index" json:"start_at"`
	EndAt    time.Time       `gorm:"not null;index" json:"end_at"`
	IsActive bool            `gorm:"not null" json:"is_active"`
	Items    []FlashSaleItem `gorm:"foreignKey:FlashSaleID" json:"items,omitempty"`
}

// IsRunning reports whether the sale applies at t.
func (f *FlashSale) IsRunning(t time.Time) bool {
	return f.IsActive && !t.Before(f.StartAt) && t.Before(f.EndAt)
}

type FlashSaleItem struct {
	BaseModel
	FlashSaleID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_flash_sale_variation" json:"flash_sale_id"`
	VariationID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_flash_sale_variation" json:"variation_id"`
	Variation   *ProductVariation `gorm:"foreignKey:VariationID" json:"variation,omitempty"`
	Price       decimal.Decimal   `gorm:"type:decimal(16,2);not null" json:"price"`
}
