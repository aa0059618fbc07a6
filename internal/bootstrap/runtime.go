// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/redisconn"
	"inkpost/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const devAdminUsername = "inkpost_admin"

// InitRuntime connects to the database and Redis and ensures the development
// administrator when configured. The Redis client is nil when unreachable.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	r := redisconn.Connect(cfg.RedisURL)

	if err := ensureDevAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	return db, r, nil
}

// ensureDevAdmin creates the development administrator, or promotes an
// existing account with the same email. It only runs in development.
func ensureDevAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrap {
		return nil
	}

	email := validation.NormalizeEmail(cfg.DevAdminEmail)
	if email == "" {
		email = "admin@inkpost.local"
	}
	password := cfg.DevAdminPassword
	if password == "" {
		return fmt.Errorf("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var admin models.User
		findErr := tx.Where("email = ?", email).First(&admin).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin = models.User{
				Username: devAdminUsername,
				Email:    email,
				Password: string(hashed),
				Role:     models.RoleAdmin,
			}
			return tx.Create(&admin).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.User{}).Where("id = ?", admin.ID).
				Update("role", models.RoleAdmin).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("development admin bootstrap ensured", slog.String("email", email))
	return nil
}
