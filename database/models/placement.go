package models

import "gorm.io/gorm"

// WallSlot names one of the three fixed positions on a wall.
type WallSlot string

const (
	SlotLeft   WallSlot = "left"
	SlotCenter WallSlot = "center"
	SlotRight  WallSlot = "right"
)

// ValidSlot reports whether slot is one of the three wall slots.
func ValidSlot(slot WallSlot) bool {
	return slot == SlotLeft || slot == SlotCenter || slot == SlotRight
}

// ArtworkPlacement pins one artwork to one slot of a wall. ExhibitionID is
// denormalized from the wall so the one-artwork-per-exhibition rule can be
// enforced with a unique index.
type ArtworkPlacement struct {
	gorm.Model
	ExhibitionID uint     `gorm:"uniqueIndex:idx_exhibition_artwork,priority:1,where:deleted_at IS NULL;not null"`
	WallID       uint     `gorm:"uniqueIndex:idx_wall_slot,priority:1,where:deleted_at IS NULL;not null"`
	Slot         WallSlot `gorm:"size:8;uniqueIndex:idx_wall_slot,priority:2;not null"`
	ArtworkID    uint     `gorm:"uniqueIndex:idx_exhibition_artwork,priority:2;not null"`

	Artwork Artwork `gorm:"foreignKey:ArtworkID"`
}
