package models

import (
	"time"

	"gorm.io/gorm"
)

// ApiToken is a long-lived static token for script access (uploads etc).
type ApiToken struct {
	gorm.Model
	UserID      uint       `gorm:"index:idx_user_active;not null" json:"user_id"`
	IsActive    bool       `gorm:"index:idx_user_active" json:"is_active"`
	Token       string     `gorm:"size:128;uniqueIndex;not null" json:"-"`
	Description string     `gorm:"size:255" json:"description"`
	LastUsedAt  *time.Time `json:"last_used_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
