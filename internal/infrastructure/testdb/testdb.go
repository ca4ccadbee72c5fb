// Package testdb opens throwaway SQLite stores with the schema applied.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/internal/config"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/database"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/schema"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

// Store is a migrated SQLite file plus its primary and read-only handles.
type Store struct {
	Path     string
	DB       *sqlx.DB
	ReadOnly *sqlx.DB
}

// Open creates a fresh store in t.TempDir and closes it on cleanup.
func Open(t testing.TB) Store {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cricket.db")

	if err := schema.NewManager(config.DriverSQLite, path, logging.NewNop()).EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	db, err := database.Open(ctx, database.Options{Driver: config.DriverSQLite, URL: path, MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	ro, err := database.Open(ctx, database.Options{Driver: config.DriverSQLite, URL: path, MaxOpenConns: 2, ReadOnly: true})
	if err != nil {
		_ = db.Close()
		t.Fatalf("open read-only database: %v", err)
	}

	t.Cleanup(func() {
		_ = ro.Close()
		_ = db.Close()
	})

	return Store{Path: path, DB: db, ReadOnly: ro}
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sqlx.DB, table string) int {
	t.Helper()

	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
