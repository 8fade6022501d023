// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the authorization class of an account.
type Role string

const (
	// RoleSuperAdmin may manage every resource, including other admin accounts.
	RoleSuperAdmin Role = "SUPER_ADMIN"
	// RoleReviewer has management read access and may manage normal users.
	RoleReviewer Role = "REVIEWER"
	// RoleUser is a normal, non-administrative account.
	RoleUser Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleReviewer, RoleUser:
		return true
	}
	return false
}

// IsAdmin reports whether r belongs to the management tier.
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleReviewer
}

// AdminRoles lists the roles that make an account an "admin".
var AdminRoles = []Role{RoleSuperAdmin, RoleReviewer}

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	// UserStatusActive accounts may authenticate.
	UserStatusActive UserStatus = "ACTIVE"
	// UserStatusInactive accounts are disabled but not sanctioned.
	UserStatusInactive UserStatus = "INACTIVE"
	// UserStatusBanned accounts are blocked by moderation.
	UserStatusBanned UserStatus = "BANNED"
)

// Valid reports whether s is one of the known statuses.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusBanned:
		return true
	}
	return false
}

// User is both an identity and an authorization subject.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Username    string         `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email       *string        `gorm:"size:100;uniqueIndex" json:"email"`
	Password    string         `gorm:"size:100;not null" json:"-"`
	Nickname    string         `gorm:"size:50" json:"nickname"`
	Avatar      string         `json:"avatar"`
	Bio         string         `gorm:"type:text" json:"bio"`
	Role        Role           `gorm:"type:varchar(20);not null;default:'USER';index" json:"role"`
	Status      UserStatus     `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	LoginCount  int            `gorm:"not null;default:0" json:"loginCount"`
	LastLoginAt *time.Time     `json:"lastLoginAt"`
	LastLoginIP string         `gorm:"size:45" json:"lastLoginIp"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsActive reports whether the account may currently authenticate.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// EmailValue returns the email or an empty string when unset.
func (u *User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
