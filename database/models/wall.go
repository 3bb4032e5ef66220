package models

import "gorm.io/gorm"

// Wall is one named wall inside an exhibition. Every wall exposes exactly
// three placement slots: left, center, right.
type Wall struct {
	gorm.Model
	ExhibitionID uint   `gorm:"uniqueIndex:idx_exhibition_position,priority:1,where:deleted_at IS NULL;not null"`
	Name         string `gorm:"size:100;not null"`
	Position     int    `gorm:"uniqueIndex:idx_exhibition_position,priority:2;not null"`

	Placements []ArtworkPlacement `gorm:"foreignKey:WallID"`
}
