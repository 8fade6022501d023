package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"wikiadmin/internal/database"
	"wikiadmin/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// setupTestDB opens a private in-memory sqlite database with the full schema.
// A single connection keeps every goroutine on the same database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func uintPtr(u uint) *uint { return &u }

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    strPtr(username + "@example.com"),
		Password: "hash",
		Role:     role,
		Status:   models.UserStatusActive,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedCategory(t *testing.T, db *gorm.DB, name string, parentID *uint) *models.ArticleCategory {
	t.Helper()
	c := &models.ArticleCategory{Name: name, ParentID: parentID, IsEnabled: true}
	require.NoError(t, db.Create(c).Error)
	return c
}

func seedArticle(t *testing.T, db *gorm.DB, title string, categoryID uint, status models.ArticleStatus) *models.Article {
	t.Helper()
	a := &models.Article{Title: title, Content: "<p>" + title + "</p>", CategoryID: categoryID, Status: status}
	require.NoError(t, db.Create(a).Error)
	return a
}
