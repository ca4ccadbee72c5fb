package schema

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-analytics/internal/config"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/database"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

func TestEnsureSchema_IsIdempotentAndKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schema.db")
	manager := NewManager(config.DriverSQLite, path, logging.NewNop())

	require.NoError(t, manager.EnsureSchema(ctx))

	db, err := database.Open(ctx, database.Options{Driver: config.DriverSQLite, URL: path})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO players (id, name, created_at, updated_at) VALUES ('p1', 'Virat Kohli', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	require.NoError(t, manager.EnsureSchema(ctx))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM players"))
	require.Equal(t, 1, count)

	version, dirty, ok, err := manager.Version(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)
}

func TestEnsureSchema_CreatesAllTables(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tables.db")
	require.NoError(t, NewManager(config.DriverSQLite, path, nil).EnsureSchema(ctx))

	db, err := database.Open(ctx, database.Options{Driver: config.DriverSQLite, URL: path})
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"players", "teams", "venues", "series", "matches", "player_match_stats", "raw_payloads"} {
		var name string
		err := db.Get(&name, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		require.NoError(t, err, table)
	}
}

func TestEnsureSchema_ForeignKeysEnforced(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fk.db")
	require.NoError(t, NewManager(config.DriverSQLite, path, nil).EnsureSchema(ctx))

	db, err := database.Open(ctx, database.Options{Driver: config.DriverSQLite, URL: path})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO player_match_stats (id, player_id, match_id, created_at, updated_at) VALUES ('s1', 'nope', 'nope', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	require.Error(t, err)
}

func TestNewManager_UnsupportedDriver(t *testing.T) {
	err := NewManager("oracle", "x", nil).EnsureSchema(context.Background())
	require.Error(t, err)
}
