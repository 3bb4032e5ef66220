package models

import (
	"time"

	"gorm.io/gorm"
)

// ArtworkStatus is the moderation state of an uploaded artwork.
type ArtworkStatus string

const (
	ArtworkStatusPending  ArtworkStatus = "pending"
	ArtworkStatusApproved ArtworkStatus = "approved"
	ArtworkStatusRejected ArtworkStatus = "rejected"
)

// IsModerated reports whether the artwork has already been reviewed.
func (s ArtworkStatus) IsModerated() bool {
	return s == ArtworkStatusApproved || s == ArtworkStatusRejected
}

type Artwork struct {
	gorm.Model
	Identifier   string `gorm:"uniqueIndex:idx_artwork_identifier;not null"`
	Title        string `gorm:"size:200;not null"`
	Description  string `gorm:"size:2000"`
	Year         int
	Medium       string `gorm:"size:100"`
	OriginalName string `gorm:"not null"`
	FileSize     int64  `gorm:"not null"`
	MimeType     string `gorm:"not null"`
	FileHash     string `gorm:"uniqueIndex:idx_user_filehash,priority:2,where:deleted_at IS NULL;not null"`
	Width        int
	Height       int
	StorageName  string `gorm:"size:32;not null"`

	Status       ArtworkStatus `gorm:"size:16;default:pending;not null;index"`
	ModeratedBy  *uint
	ModeratedAt  *time.Time
	RejectReason string `gorm:"size:500"`

	UserID uint `gorm:"uniqueIndex:idx_user_filehash,priority:1;index:idx_artist_created_at,priority:1"`
	User   User `gorm:"foreignKey:UserID"`
}
