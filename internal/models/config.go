package models

import "time"

// ConfigType discriminates which satellite table holds a Config's value.
type ConfigType string

const (
	ConfigTypeText         ConfigType = "TEXT"
	ConfigTypeTextarea     ConfigType = "TEXTAREA"
	ConfigTypeRichText     ConfigType = "RICH_TEXT"
	ConfigTypeImage        ConfigType = "IMAGE"
	ConfigTypeMultiImage   ConfigType = "MULTI_IMAGE"
	ConfigTypeMultiText    ConfigType = "MULTI_TEXT"
	ConfigTypeMultiContent ConfigType = "MULTI_CONTENT"
)

// Valid reports whether t is one of the known config types.
func (t ConfigType) Valid() bool {
	switch t {
	case ConfigTypeText, ConfigTypeTextarea, ConfigTypeRichText, ConfigTypeImage,
		ConfigTypeMultiImage, ConfigTypeMultiText, ConfigTypeMultiContent:
		return true
	}
	return false
}

// IsMulti reports whether values of t are stored as an ordered list of rows.
func (t ConfigType) IsMulti() bool {
	return t == ConfigTypeMultiImage || t == ConfigTypeMultiText || t == ConfigTypeMultiContent
}

// Config is a keyed, typed system setting. Its value lives in exactly one
// satellite table chosen by Type.
type Config struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:100;uniqueIndex;not null" json:"title"`
	Key         string     `gorm:"size:100;uniqueIndex;not null" json:"key"`
	Type        ConfigType `gorm:"type:varchar(20);not null" json:"type"`
	Description string     `gorm:"type:text" json:"description"`
	Sort        int        `gorm:"not null;default:0;index" json:"sort"`
	IsEnabled   bool       `gorm:"not null" json:"isEnabled"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	TextValue          *ConfigTextValue          `gorm:"foreignKey:ConfigID" json:"-"`
	ImageValue         *ConfigImageValue         `gorm:"foreignKey:ConfigID" json:"-"`
	MultiImageValues   []ConfigMultiImageValue   `gorm:"foreignKey:ConfigID" json:"-"`
	MultiTextValues    []ConfigMultiTextValue    `gorm:"foreignKey:ConfigID" json:"-"`
	MultiContentValues []ConfigMultiContentValue `gorm:"foreignKey:ConfigID" json:"-"`
}

// ConfigTextValue holds the value of TEXT, TEXTAREA and RICH_TEXT configs.
type ConfigTextValue struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ConfigID  uint      `gorm:"uniqueIndex;not null" json:"configId"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConfigImageValue holds the URL of an IMAGE config.
type ConfigImageValue struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ConfigID  uint      `gorm:"uniqueIndex;not null" json:"configId"`
	URL       string    `gorm:"size:500" json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ConfigMultiImageValue is one item of a MULTI_IMAGE config.
type ConfigMultiImageValue struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ConfigID uint   `gorm:"not null;index" json:"configId"`
	URL      string `gorm:"size:500" json:"url"`
	Sort     int    `gorm:"not null;default:0" json:"sort"`
}

// ConfigMultiTextValue is one item of a MULTI_TEXT config.
type ConfigMultiTextValue struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ConfigID uint   `gorm:"not null;index" json:"configId"`
	Title    string `gorm:"size:200" json:"title"`
	Content  string `gorm:"type:text" json:"content"`
	Link     string `gorm:"size:500" json:"link"`
	Sort     int    `gorm:"not null;default:0" json:"sort"`
}

// ConfigMultiContentValue is one item of a MULTI_CONTENT config.
type ConfigMultiContentValue struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ConfigID uint   `gorm:"not null;index" json:"configId"`
	Title    string `gorm:"size:200" json:"title"`
	Content  string `gorm:"type:text" json:"content"`
	ImageURL string `gorm:"size:500" json:"imageUrl"`
	Link     string `gorm:"size:500" json:"link"`
	Sort     int    `gorm:"not null;default:0" json:"sort"`
}

// SystemSetting is a free-form site setting stored as a string.
type SystemSetting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
