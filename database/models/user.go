package models

import (
	"gorm.io/gorm"
)

// User roles, ordered roughly by privilege.
const (
	RoleVisitor = "visitor"
	RoleArtist  = "artist"
	RoleCurator = "curator"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleVisitor, RoleArtist, RoleCurator, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Username    string `gorm:"uniqueIndex;size:64;not null"`
	Password    string `gorm:"not null" json:"-"`
	Role        string `gorm:"size:16;default:visitor;not null"`
	DisplayName string `gorm:"size:100"`
	Bio         string `gorm:"size:500"`
}

// CanModerate reports whether the user may approve or reject artworks.
func (u *User) CanModerate() bool {
	return u.Role == RoleCurator || u.Role == RoleAdmin
}

// CanUpload reports whether the user may upload artworks.
func (u *User) CanUpload() bool {
	return u.Role == RoleArtist || u.Role == RoleCurator || u.Role == RoleAdmin
}
