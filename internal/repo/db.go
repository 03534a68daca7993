// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver) and Postgres, schema migrations, demo seeding and
// tracing instrumentation.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/hotel-concierge/internal/domain"
)

// Open opens the configured database. driver is "sqlite" or "postgres".
func Open(driver, path, dsn string) (*gorm.DB, error) {
	switch driver {
	case "sqlite":
		return OpenSQLite(path)
	case "postgres":
		return OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("repo: unsupported driver %q", driver)
	}
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	tunePool(db, 10)
	return db, nil
}

// OpenPostgres connects to Postgres through the pgx-backed GORM driver.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	tunePool(db, 20)
	return db, nil
}

func tunePool(db *gorm.DB, maxOpen int) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(maxOpen)
		sqlDB.SetMaxIdleConns(maxOpen)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
}

// Instrument registers the OpenTelemetry GORM plugin so every query becomes
// a child span of the request span carried in the context.
func Instrument(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin())
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Hotel{},
		&domain.Faq{},
		&domain.ChatSession{},
		&domain.ChatMessage{},
		&domain.ChatEvent{},
		&domain.Idempotency{},
	)
}

// Ping checks connectivity and returns the time the check completed.
func Ping(ctx context.Context, db *gorm.DB) (time.Time, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return time.Time{}, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return time.Time{}, err
	}
	return time.Now().UTC(), nil
}

// DemoHotels are the two tenants shipped with the built-in credential
// registry.
func DemoHotels() []domain.Hotel {
	return []domain.Hotel{
		{ID: "demo-hotel", Name: "Demo Hotel", Plan: "basic", Languages: "el,en", WelcomeMessage: "Καλώς ήρθατε! Πώς μπορώ να βοηθήσω;"},
		{ID: "olympia-athens", Name: "Olympia Athens", Plan: "pro", Languages: "el,en,de,fr,it,es", WelcomeMessage: "Welcome to Olympia Athens!"},
	}
}

// SeedHotels inserts the given hotels, leaving existing rows untouched.
func SeedHotels(ctx context.Context, db *gorm.DB, hotels []domain.Hotel) error {
	if len(hotels) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&hotels).Error
}
