// Package bootstrap wires up the runtime dependencies (database, Redis,
// optional demo data) before the HTTP server starts.
package bootstrap

import (
	"fmt"
	"log"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData fills an empty development database with demo users
	// and blogs on boot.
	SeedDemoData bool
}

// InitRuntime connects to the database and Redis and optionally seeds demo
// data. The Redis client may be nil when Redis is unreachable; rate limiting
// degrades rather than blocking startup.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := maybeSeedDemoData(cfg, db, opts); err != nil {
		return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
	}

	return db, r, nil
}

// maybeSeedDemoData seeds an empty development database. Production and any
// database that already has users are left alone.
func maybeSeedDemoData(cfg *config.Config, db *gorm.DB, opts Options) error {
	if !opts.SeedDemoData {
		return nil
	}
	if cfg == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("development database is empty, seeding demo data")
	seedOpts := seed.DefaultOptions()
	seedOpts.Clean = false
	return seed.Run(db, seedOpts)
}
