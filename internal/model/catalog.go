package model

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name        string     `gorm:"type:varchar(150);not null" json:"name"`
	Slug        string     `gorm:"type:varchar(180);uniqueIndex;not null" json:"slug"`
	Description string     `gorm:"type:text" json:"description"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	Parent      *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children    []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

// CategoryNode is a row of the recursive category tree query.
type CategoryNode struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id"`
	Depth    int        `json:"depth"`
}

// Collection is a curated, cross-store product list.
type Collection struct {
	BaseModel
	Name        string    `gorm:"type:varchar(150);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(180);uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	Products    []Product `gorm:"many2many:collection_products;" json:"products,omitempty"`
}

type Tag struct {
	BaseModel
	Name string `gorm:"type:varchar(80);uniqueIndex;not null" json:"name"`
	Slug string `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
}
