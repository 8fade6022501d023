package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"wikiadmin/internal/cache"
	"wikiadmin/internal/config"
	"wikiadmin/internal/database"
	"wikiadmin/internal/middleware"
	"wikiadmin/internal/models"
	"wikiadmin/internal/seed"
	"wikiadmin/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedBuiltIns bool
}

// InitRuntime connects to DB and Redis, ensures the initial super admin and
// optionally runs built-in seeding.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	// Connect DB (migrates when DB_AUTO_MIGRATE is set)
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureInitAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap initial admin: %w", err)
	}

	if opts.SeedBuiltIns {
		if err := seed.BuiltIns(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-ins: %w", err)
		}
	}

	return db, r, nil
}

// EnsureInitAdmin creates the configured super admin when no account with
// that username exists. An existing account is promoted and reactivated but
// its password is never overwritten.
func EnsureInitAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !cfg.InitAdminEnabled {
		return nil
	}

	username := strings.TrimSpace(cfg.InitAdminUsername)
	if username == "" {
		username = "admin"
	}
	password := cfg.InitAdminPassword
	if password == "" {
		middleware.Logger.Warn("INIT_ADMIN_PASSWORD is empty; skipping initial admin bootstrap")
		return nil
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("INIT_ADMIN_PASSWORD: %w", err)
	}

	created := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Unscoped().Where("username = ?", username).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin = models.User{
				Username: username,
				Password: string(hashed),
				Nickname: "Administrator",
				Role:     models.RoleSuperAdmin,
				Status:   models.UserStatusActive,
			}
			if email := strings.ToLower(strings.TrimSpace(cfg.InitAdminEmail)); email != "" {
				admin.Email = &email
			}
			created = true
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		}

		return tx.Unscoped().Model(&models.User{}).Where("id = ?", admin.ID).Updates(map[string]any{
			"role":       models.RoleSuperAdmin,
			"status":     models.UserStatusActive,
			"deleted_at": nil,
		}).Error
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("initial admin ensured", slog.String("username", username), slog.Bool("created", created))
	return nil
}
