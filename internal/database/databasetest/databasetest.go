// Package databasetest opens throwaway in-memory databases for tests.
package databasetest

import (
	"testing"

	"socialnet/backend/internal/database"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated in-memory SQLite database with foreign keys on.
// The pool is pinned to one connection because every new connection to
// ":memory:" would see an empty database.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Options{
		Driver:       "sqlite",
		DSN:          ":memory:?_pragma=foreign_keys(1)",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		LogLevel:     logger.Silent,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
