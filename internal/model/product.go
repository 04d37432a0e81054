package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	StoreID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"store_id"`
	Store       *Store         `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	CategoryID  *uuid.UUID     `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string         `gorm:"type:varchar(280);uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Images      StringList     `json:"images"`
	IsPublished bool           `gorm:"not null" json:"is_published"`

	Variations      []ProductVariation `gorm:"foreignKey:ProductID" json:"variations,omitempty"`
	Tags            []Tag              `gorm:"many2many:product_tags;" json:"tags,omitempty"`
	RelatedProducts []Product          `gorm:"many2many:related_products;joinForeignKey:ProductID;joinReferences:RelatedProductID" json:"related_products,omitempty"`
}

type ProductVariation struct {
	BaseModel
	ProductID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product            `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SKU           string              `gorm:"type:varchar(80);uniqueIndex;not null" json:"sku"`
	Name          string              `gorm:"type:varchar(150);not null" json:"name"` // e.g. "Red / XL"
	Price         decimal.Decimal     `gorm:"type:decimal(16,2);not null" json:"price"`
	DiscountPrice decimal.NullDecimal `gorm:"type:decimal(16,2)" json:"discount_price"`
	DiscountStart *time.Time          `json:"discount_start"`
	DiscountEnd   *time.Time          `json:"discount_end"`
	Stock         int                 `gorm:"not null;default:0" json:"stock"`

	// Filled by the pricing layer, never persisted.
	EffectivePrice *decimal.Decimal `gorm:"-" json:"effective_price,omitempty"`
	PriceSource    string           `gorm:"-" json:"price_source,omitempty"`
}
