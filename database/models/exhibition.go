package models

import (
	"time"

	"gorm.io/gorm"
)

// ExhibitionState is the publication state of an exhibition.
type ExhibitionState string

const (
	ExhibitionStateDraft     ExhibitionState = "draft"
	ExhibitionStatePublished ExhibitionState = "published"
	ExhibitionStateArchived  ExhibitionState = "archived"
)

// Exhibition is a curator-defined collection of artworks with a date range
// and a 3D wall layout rendered by the external viewer.
type Exhibition struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null"`
	User        User   `gorm:"foreignKey:UserID"`
	Title       string `gorm:"size:200;not null"`
	Description string `gorm:"size:2000"`

	StartsAt time.Time `gorm:"not null"`
	EndsAt   time.Time `gorm:"not null"`

	State ExhibitionState `gorm:"size:16;default:draft;not null;index"`

	// Environment is a JSON blob of 3D scene settings (room template,
	// skybox, lighting) passed through to the viewer client.
	Environment string `gorm:"type:text"`

	Walls []Wall `gorm:"foreignKey:ExhibitionID"`
}
