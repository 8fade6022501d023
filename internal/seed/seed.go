package seed

import (
	"errors"
	"fmt"
	"log"

	"wikiadmin/internal/database"
	"wikiadmin/internal/models"
	"wikiadmin/internal/service"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumAdmins           int  `yaml:"admins"`
	NumUsers            int  `yaml:"users"`
	NumWikis            int  `yaml:"wikis"`
	NumCategories       int  `yaml:"categories"`
	ArticlesPerCategory int  `yaml:"articlesPerCategory"`
	CommentsPerArticle  int  `yaml:"commentsPerArticle"`
	ShouldClean         bool `yaml:"clean"`
	SkipBcrypt          bool `yaml:"skipBcrypt"`
	MaxDays             int  `yaml:"maxDays"`
}

// Result counts what a seeding run created.
type Result struct {
	Admins     int
	Users      int
	Wikis      int
	Categories int
	Articles   int
	Comments   int
	Configs    int
}

// DefaultSettings are written once and never overwrite edited values.
var DefaultSettings = map[string]string{
	"siteName":                 "Wiki Admin",
	"siteDescription":          "Multi-tenant wiki hosting",
	"siteKeywords":             "wiki",
	"allowRegistration":        "true",
	"defaultUserRole":          "user",
	"articleReviewEnabled":     "false",
	"maxUploadSize":            "10",
	"emailNotificationEnabled": "false",
}

// BuiltIns ensures the tutorial root category and the default system
// settings exist. It is safe to run on every start.
func BuiltIns(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var root models.ArticleCategory
		err := tx.First(&root, service.DefaultTutorialRoot).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			root = models.ArticleCategory{
				ID:          service.DefaultTutorialRoot,
				Name:        "Tutorials",
				Description: "Public tutorial index",
				IsEnabled:   true,
			}
			if err := tx.Create(&root).Error; err != nil {
				return fmt.Errorf("create tutorial root: %w", err)
			}
			// Explicit ID insertion leaves the PostgreSQL sequence behind.
			if tx.Dialector.Name() == "postgres" {
				if err := tx.Exec(`
					SELECT setval(
						pg_get_serial_sequence('article_categories', 'id'),
						GREATEST((SELECT COALESCE(MAX(id), 1) FROM article_categories), 1),
						true
					)
				`).Error; err != nil {
					return fmt.Errorf("failed to reset article_categories sequence: %w", err)
				}
			}
		case err != nil:
			return err
		}

		rows := make([]models.SystemSetting, 0, len(DefaultSettings))
		for key, value := range DefaultSettings {
			rows = append(rows, models.SystemSetting{Key: key, Value: value})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

// ClearAll removes every row of every persistent table.
func ClearAll(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE comments, articles, article_categories, config_text_values,
			config_image_values, config_multi_image_values, config_multi_text_values,
			config_multi_content_values, configs, system_settings, wikis, users RESTART IDENTITY CASCADE;`).Error
	}
	registry := database.PersistentModels()
	for i := len(registry) - 1; i >= 0; i-- {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(registry[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// Seed populates the database with demo data
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("🌱 Starting database seeding: %d admins, %d users, %d wikis, %d categories",
		opts.NumAdmins, opts.NumUsers, opts.NumWikis, opts.NumCategories)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}
	if err := BuiltIns(db); err != nil {
		return nil, fmt.Errorf("failed to seed built-ins: %w", err)
	}

	f := NewFactory(db, SeedOptions{SkipBcrypt: opts.SkipBcrypt, MaxDays: opts.MaxDays})
	res := &Result{}

	admins := make([]*models.User, 0, opts.NumAdmins)
	for i := 0; i < opts.NumAdmins; i++ {
		role := models.RoleReviewer
		if i == 0 {
			role = models.RoleSuperAdmin
		}
		u, err := f.CreateUser(role)
		if err != nil {
			return nil, fmt.Errorf("failed to create admin: %w", err)
		}
		admins = append(admins, u)
	}
	res.Admins = len(admins)
	log.Printf("✓ %d admins created", res.Admins)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(models.RoleUser)
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)
	log.Printf("✓ %d users created", res.Users)

	creators := append(append([]*models.User{}, admins...), users...)
	if len(creators) > 0 {
		for i := 0; i < opts.NumWikis; i++ {
			if _, err := f.CreateWiki(creators[f.rnd.Intn(len(creators))]); err != nil {
				return nil, fmt.Errorf("failed to create wiki: %w", err)
			}
			res.Wikis++
		}
	}
	log.Printf("✓ %d wikis created", res.Wikis)

	tutorialRoot := &models.ArticleCategory{ID: service.DefaultTutorialRoot}
	for i := 0; i < opts.NumCategories; i++ {
		category, err := f.CreateCategory(tutorialRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to create category: %w", err)
		}
		res.Categories++

		for j := 0; j < opts.ArticlesPerCategory; j++ {
			var author *models.User
			if len(admins) > 0 {
				author = admins[f.rnd.Intn(len(admins))]
			}
			article, err := f.CreateArticle(category, author)
			if err != nil {
				return nil, fmt.Errorf("failed to create article: %w", err)
			}
			res.Articles++

			for k := 0; k < opts.CommentsPerArticle && len(creators) > 0; k++ {
				if _, err := f.CreateComment(creators[f.rnd.Intn(len(creators))], article); err != nil {
					return nil, fmt.Errorf("failed to create comment: %w", err)
				}
				res.Comments++
			}
		}
	}
	log.Printf("✓ %d categories, %d articles, %d comments created", res.Categories, res.Articles, res.Comments)

	log.Println("🎉 Database seeding completed successfully!")
	return res, nil
}

// ApplyConfigs creates the preset configs whose keys are not taken yet.
func ApplyConfigs(db *gorm.DB, presets []ConfigPreset) (int, error) {
	f := NewFactory(db, SeedOptions{})
	created := 0
	for _, p := range presets {
		var count int64
		if err := db.Model(&models.Config{}).Where("key = ?", p.Key).Count(&count).Error; err != nil {
			return created, err
		}
		if count > 0 {
			continue
		}
		cfg, err := p.Model()
		if err != nil {
			return created, err
		}
		if _, err := f.CreateConfig(cfg); err != nil {
			return created, fmt.Errorf("create config %s: %w", p.Key, err)
		}
		created++
	}
	return created, nil
}
