package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is a vendor shop front. Orders are split per store.
type Store struct {
	BaseModel
	OwnerID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner          *User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Name           string          `gorm:"type:varchar(150);not null" json:"name"`
	Slug           string          `gorm:"type:varchar(180);uniqueIndex;not null" json:"slug"`
	Description    string          `gorm:"type:text" json:"description"`
	LogoURL        string          `gorm:"type:varchar(500)" json:"logo_url"`
	Email          string          `gorm:"type:varchar(255)" json:"email"`
	Phone          string          `gorm:"type:varchar(30)" json:"phone"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"commission_rate"` // percent
	IsActive       bool            `gorm:"not null" json:"is_active"`
}
