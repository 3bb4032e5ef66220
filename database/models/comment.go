package models

import "gorm.io/gorm"

// Comment is a visitor comment on an approved artwork.
type Comment struct {
	gorm.Model
	ArtworkID uint   `gorm:"index;not null"`
	UserID    uint   `gorm:"index;not null"`
	Body      string `gorm:"size:1000;not null"`

	User    User    `gorm:"foreignKey:UserID"`
	Artwork Artwork `gorm:"foreignKey:ArtworkID"`
}
