package models

import "time"

// ArticleStatus is the two-state publication flag of an article.
type ArticleStatus string

const (
	// ArticleStatusDraft articles are not visible on public surfaces.
	ArticleStatusDraft ArticleStatus = "DRAFT"
	// ArticleStatusPublished articles are visible on public surfaces.
	ArticleStatusPublished ArticleStatus = "PUBLISHED"
)

// Valid reports whether s is one of the known statuses.
func (s ArticleStatus) Valid() bool {
	return s == ArticleStatusDraft || s == ArticleStatusPublished
}

// Article is a piece of rich-text content filed under exactly one category.
type Article struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Title      string           `gorm:"size:200;not null" json:"title"`
	Content    string           `gorm:"type:text;not null" json:"content"`
	Summary    string           `gorm:"type:text" json:"summary"`
	ViewCount  int64            `gorm:"not null;default:0" json:"viewCount"`
	Status     ArticleStatus    `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Tags       []string         `gorm:"type:text;serializer:json" json:"tags"`
	CategoryID uint             `gorm:"not null;index" json:"categoryId"`
	Category   *ArticleCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AuthorID   *uint            `gorm:"index" json:"authorId"`
	Author     *User            `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// ArticleCategory is a node of the self-referencing category hierarchy.
type ArticleCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Sort        int       `gorm:"not null;default:0;index" json:"sort"`
	IsEnabled   bool      `gorm:"not null" json:"isEnabled"`
	ParentID    *uint     `gorm:"index" json:"parentId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Children is populated by the tree builder only.
	Children []*ArticleCategory `gorm:"-" json:"children,omitempty"`
}
