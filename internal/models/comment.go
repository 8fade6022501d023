package models

import "time"

// Comment is attached to a user and, optionally, an article or a detail page.
// IsActive and IsDeleted are independent flags.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	UserID       uint      `gorm:"not null;index" json:"userId"`
	User         *User     `gorm:"foreignKey:UserID" json:"-"`
	ArticleID    *uint     `gorm:"index" json:"articleId"`
	Article      *Article  `gorm:"foreignKey:ArticleID" json:"-"`
	DetailPageID *uint     `gorm:"index" json:"detailPageId"`
	ParentID     *uint     `gorm:"index" json:"parentId"`
	Parent       *Comment  `gorm:"foreignKey:ParentID" json:"-"`
	IsActive     bool      `gorm:"not null;index" json:"isActive"`
	IsDeleted    bool      `gorm:"not null;index" json:"isDeleted"`
	Likes        int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
