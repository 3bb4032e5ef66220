package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification types fanned out on gallery events.
const (
	NotificationArtworkApproved = "artwork_approved"
	NotificationArtworkRejected = "artwork_rejected"
	NotificationCommentCreated  = "comment_created"
	NotificationArtworkPlaced   = "artwork_placed"
)

type Notification struct {
	gorm.Model
	RecipientID uint       `gorm:"index:idx_recipient_read,priority:1;not null" json:"recipient_id"`
	ActorID     uint       `json:"actor_id"`
	Type        string     `gorm:"size:32;not null" json:"type"`
	TargetType  string     `gorm:"size:16" json:"target_type"` // artwork, comment, exhibition
	TargetID    uint       `json:"target_id"`
	Message     string     `gorm:"size:500" json:"message"`
	IsRead      bool       `gorm:"index:idx_recipient_read,priority:2;default:false;not null" json:"is_read"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
}
