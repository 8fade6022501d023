package models

import (
	"time"

	"gorm.io/gorm"
)

// WikiStatus defines the review state of a wiki.
type WikiStatus string

const (
	// WikiStatusPending is the initial state awaiting review.
	WikiStatusPending WikiStatus = "PENDING"
	// WikiStatusDraft is an approved wiki that has not been published yet.
	WikiStatusDraft WikiStatus = "DRAFT"
	// WikiStatusRejected is a wiki declined during review.
	WikiStatusRejected WikiStatus = "REJECTED"
	// WikiStatusPublished is a live wiki.
	WikiStatusPublished WikiStatus = "PUBLISHED"
)

// Valid reports whether s is one of the known statuses.
func (s WikiStatus) Valid() bool {
	switch s {
	case WikiStatusPending, WikiStatusDraft, WikiStatusRejected, WikiStatusPublished:
		return true
	}
	return false
}

// Wiki is a tenant site.
type Wiki struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Subdomain        string     `gorm:"size:100;uniqueIndex;not null" json:"subdomain"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	Keywords         string     `gorm:"type:text" json:"keywords"`
	MetaDescription  string     `gorm:"type:text" json:"metaDescription"`
	Logo             string     `gorm:"size:255" json:"logo"`
	BackgroundImage  string     `gorm:"size:255" json:"backgroundImage"`
	MenuBackground   string     `gorm:"size:255" json:"menuBackground"`
	PrimaryColor     string     `gorm:"size:7;not null;default:'#000000'" json:"primaryColor"`
	TextColor        string     `gorm:"size:7;not null;default:'#333333'" json:"textColor"`
	Status           WikiStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatorID        uint       `gorm:"not null;index" json:"creatorId"`
	Creator          *User      `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	ApprovedByID     *uint      `json:"approvedById"`
	ApprovedBy       *User      `gorm:"foreignKey:ApprovedByID" json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt"`
	RejectReason     string     `gorm:"type:text" json:"rejectReason"`
	PageCount        int        `gorm:"not null;default:0" json:"pageCount"`
	ContributorCount int        `gorm:"not null;default:0" json:"contributorCount"`
	ViewCount        int64      `gorm:"not null;default:0" json:"viewCount"`
	// Tags keeps insertion order; stored as a JSON array.
	Tags         []string       `gorm:"type:text;serializer:json" json:"tags"`
	CustomDomain *string        `gorm:"size:100;uniqueIndex" json:"customDomain"`
	ContactInfo  string         `gorm:"size:100" json:"contactInfo"`
	ApplyReason  string         `gorm:"type:text" json:"applyReason"`
	License      string         `gorm:"size:50;not null;default:'CC-BY-SA'" json:"license"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
