package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/cricket-analytics/internal/config"
	"github.com/riskibarqy/cricket-analytics/internal/domain/crud"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		AppEnv:             config.EnvDev,
		ServiceName:        "cricket-analytics",
		HTTPAddr:           ":0",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		DBDriver:           config.DriverSQLite,
		DBURL:              filepath.Join(t.TempDir(), "cricket.db"),
		DBMaxOpenConns:     4,
		DBSeedOnStart:      true,
		CacheEnabled:       true,
		CacheQueryTTL:      time.Minute,
		QueryTimeout:       5 * time.Second,
		QueryCustomMaxRows: 100,
		IngestWorkers:      2,
	}
}

func TestNewRuntime_SeedsAndWiresServices(t *testing.T) {
	ctx := context.Background()
	rt, err := NewRuntime(ctx, testConfig(t), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	require.NotNil(t, rt.ReadOnly)
	require.Nil(t, rt.Services.Ingestion, "no api key means no provider")

	players, err := rt.Services.Players.List(ctx, player.Filter{}, crud.Page{Limit: 50})
	require.NoError(t, err)
	require.Len(t, players, 15)

	overview, err := rt.Services.Queries.Overview(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 15, overview.Players)
}

func TestNewRuntime_SecondStartKeepsData(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	first, err := NewRuntime(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	_, err = first.Services.Players.Delete(ctx, "seed-player-15")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewRuntime(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	overview, err := second.Services.Queries.Overview(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 14, overview.Players, "seed must not refill a populated store")
}

func TestNewHTTPServer_ServesHealthz(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	rt, err := NewRuntime(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	srv, err := NewHTTPServer(cfg, rt, logging.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNewHTTPServer_RequiresAddr(t *testing.T) {
	cfg := testConfig(t)
	cfg.HTTPAddr = ""
	_, err := NewHTTPServer(cfg, &Runtime{}, logging.NewNop())
	require.Error(t, err)
}

func TestNewRuntime_SchedulerNeedsQStashToken(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.DBSeedOnStart = false

	rt, err := NewRuntime(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	require.Nil(t, rt.Services.Scheduler)
	require.NoError(t, rt.Close())

	cfg.QStashToken = "qstash-token"
	cfg.QStashTargetBaseURL = "https://cricket.example.com"
	cfg.QStashBaseURL = "https://qstash.example.com"
	rt, err = NewRuntime(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	require.NotNil(t, rt.Services.Scheduler)
}
