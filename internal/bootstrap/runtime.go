// Package bootstrap wires the runtime dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/middleware"
	"jobboard/internal/models"
	"jobboard/internal/seed"
	"jobboard/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedCategories bool
}

// InitRuntime connects to the database and Redis, then runs the optional
// development bootstrap steps.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; the client stays nil when unreachable.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := EnsureDevAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development admin: %w", err)
	}

	if opts.SeedCategories {
		if err := SeedCategoriesIfEmpty(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed categories: %w", err)
		}
	}

	return db, r, nil
}

// EnsureDevAdmin creates the development admin account when enabled. It is
// a no-op outside development.
func EnsureDevAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapAdmin {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevAdminEmail))
	if email == "" {
		email = "admin@jobboard.local"
	}
	if cfg.DevAdminPassword == "" {
		return fmt.Errorf("DEV_ADMIN_PASSWORD must be set when DEV_BOOTSTRAP_ADMIN is enabled")
	}

	auth := service.NewAuthService(db, nil)
	user, created, err := auth.EnsureAdmin(ctx, email, cfg.DevAdminPassword)
	if err != nil {
		return err
	}
	if !created && user.Role != models.RoleAdmin {
		return fmt.Errorf("%s is registered with role %s", email, user.Role)
	}

	middleware.Logger.Info("development admin ensured", "email", email, "user_id", user.ID, "created", created)
	return nil
}

// SeedCategoriesIfEmpty loads the built-in categories into an empty table.
func SeedCategoriesIfEmpty(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	n, err := seed.Categories(ctx, db)
	if err != nil {
		return err
	}
	middleware.Logger.Info("seeded categories", "count", n)
	return nil
}
