package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// CouponScope decides which cart lines a coupon discounts.
type CouponScope string

const (
	ScopeAll     CouponScope = "all"
	ScopeStore   CouponScope = "store"
	ScopeUser    CouponScope = "user"
	ScopeProduct CouponScope = "product"
)

type Coupon struct {
	BaseModel
	Code           string              `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description    string              `gorm:"type:text" json:"description"`
	DiscountType   DiscountType        `gorm:"type:varchar(20);not null" json:"discount_type"`
	Value          decimal.Decimal     `gorm:"type:decimal(16,2);not null" json:"value"`
	MaxDiscount    decimal.NullDecimal `gorm:"type:decimal(16,2)" json:"max_discount"`
	MinOrderAmount decimal.Decimal     `gorm:"type:decimal(16,2);not null;default:0" json:"min_order_amount"`
	AppliesTo      CouponScope         `gorm:"type:varchar(20);not null;default:'all'" json:"applies_to"`
	StartAt        time.Time           `gorm:"not null" json:"start_at"`
	EndAt          time.Time           `gorm:"not null" json:"end_at"`
	UsageLimit     int                 `gorm:"not null;default:0" json:"usage_limit"` // 0 = unlimited
	UsedCount      int                 `gorm:"not null;default:0" json:"used_count"`
	IsRevoked      bool                `gorm:"default:false" json:"is_revoked"`

	Stores   []Store   `gorm:"many2many:coupon_stores;" json:"stores,omitempty"`
	Users    []User    `gorm:"many2many:coupon_users;" json:"users,omitempty"`
	Products []Product `gorm:"many2many:coupon_products;" json:"products,omitempty"`
}

type CreditCode struct {
	BaseModel
	Code       string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Amount     decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
	UserID     *uuid.UUID      `gorm:"type:uuid;index" json:"user_id"` // nil: anyone may redeem
	UsageLimit int             `gorm:"not null;default:1" json:"usage_limit"`
	UsedCount  int             `gorm:"not null;default:0" json:"used_count"`
	ExpiresAt  *time.Time      `json:"expires_at"`
	IsRevoked  bool            `gorm:"default:false" json:"is_revoked"`
}

// CreditCodeUsage records a redemption; a user redeems a code at most once.
type CreditCodeUsage struct {
	BaseModel
	CreditCodeID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_credit_usage_code_user" json:"credit_code_id"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_credit_usage_code_user" json:"user_id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null" json:"order_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(16,2);not null" json:"amount"`
}
