package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is one line of a user's cart; (user, variation) is unique.
type Cart struct {
	BaseModel
	UserID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_variation" json:"user_id"`
	VariationID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_variation" json:"variation_id"`
	Variation   *ProductVariation `gorm:"foreignKey:VariationID" json:"variation,omitempty"`
	Quantity    int               `gorm:"not null" json:"quantity"`

	UnitPrice   decimal.Decimal `gorm:"-" json:"unit_price"`
	PriceSource string          `gorm:"-" json:"price_source"`
	LineTotal   decimal.Decimal `gorm:"-" json:"line_total"`
}

type Wishlist struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

type UserAddress struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Label      string    `gorm:"type:varchar(50)" json:"label"`
	Recipient  string    `gorm:"type:varchar(150);not null" json:"recipient"`
	Phone      string    `gorm:"type:varchar(30);not null" json:"phone"`
	Line1      string    `gorm:"type:varchar(255);not null" json:"line1"`
	Line2      string    `gorm:"type:varchar(255)" json:"line2"`
	City       string    `gorm:"type:varchar(100);not null" json:"city"`
	State      string    `gorm:"type:varchar(100)" json:"state"`
	Country    string    `gorm:"type:varchar(100);not null" json:"country"`
	PostalCode string    `gorm:"type:varchar(20)" json:"postal_code"`
	IsDefault  bool      `gorm:"default:false" json:"is_default"`
}
