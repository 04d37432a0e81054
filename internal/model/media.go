package model

import "github.com/google/uuid"

type MediaFolder struct {
	BaseModel
	OwnerID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name     string     `gorm:"type:varchar(150);not null" json:"name"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
}

// MediaFolderNode is a row of the recursive folder queries; Depth is the
// distance from the folder the query started at.
type MediaFolderNode struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parent_id"`
	Depth    int        `json:"depth"`
}

type MediaFile struct {
	BaseModel
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	FolderID     *uuid.UUID `gorm:"type:uuid;index" json:"folder_id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	ObjectKey    string     `gorm:"type:varchar(500);not null" json:"object_key"`
	URL          string     `gorm:"type:varchar(700);not null" json:"url"`
	ThumbnailKey string     `gorm:"type:varchar(500)" json:"-"`
	ThumbnailURL string     `gorm:"type:varchar(700)" json:"thumbnail_url"`
	MimeType     string     `gorm:"type:varchar(100)" json:"mime_type"`
	Size         int64      `json:"size"`
}
