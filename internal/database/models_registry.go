package database

import (
	"fmt"

	"wikiadmin/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Wiki{},
		&models.ArticleCategory{},
		&models.Article{},
		&models.Comment{},
		&models.Config{},
		&models.ConfigTextValue{},
		&models.ConfigImageValue{},
		&models.ConfigMultiImageValue{},
		&models.ConfigMultiTextValue{},
		&models.ConfigMultiContentValue{},
		&models.SystemSetting{},
	}
}

// Migrate creates or updates the schema for every persistent model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
