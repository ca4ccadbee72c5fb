// Package app assembles the store, repositories, services and transports
// from a config.Config. Both the API binary and cricketctl build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/cricket-analytics/external/cricbuzz"
	"github.com/riskibarqy/cricket-analytics/external/jobqueue"
	"github.com/riskibarqy/cricket-analytics/internal/config"
	"github.com/riskibarqy/cricket-analytics/internal/domain/analytics"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/database"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/cricket-analytics/internal/infrastructure/schema"
	"github.com/riskibarqy/cricket-analytics/internal/interfaces/httpapi"
	"github.com/riskibarqy/cricket-analytics/internal/platform/cache"
	idgen "github.com/riskibarqy/cricket-analytics/internal/platform/id"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
	"github.com/riskibarqy/cricket-analytics/internal/platform/resilience"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

// Runtime owns the store handles and every service built on them.
type Runtime struct {
	DB       *sqlx.DB
	ReadOnly *sqlx.DB
	Schema   *schema.Manager
	Services httpapi.Services

	logger *logging.Logger
}

// NewRuntime opens the store, ensures the schema and wires the services.
// The sample data is loaded when DB_SEED_ON_START is set and the store has
// no players yet.
func NewRuntime(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	manager := schema.NewManager(cfg.DBDriver, cfg.DBURL, logger)
	if err := manager.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	db, err := database.FromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	}
	readOnly, err := database.ReadOnlyFromConfig(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: read-only handle: %v", usecase.ErrDependencyUnavailable, err)
	}

	rt := &Runtime{DB: db, ReadOnly: readOnly, Schema: manager, logger: logger}

	if cfg.DBSeedOnStart {
		seeded, err := sqlstore.BootstrapSeed(ctx, db, time.Now().UTC())
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		logger.InfoContext(ctx, "seed checked", "inserted", seeded)
	}

	if err := rt.wire(cfg); err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) wire(cfg config.Config) error {
	catalog, err := analytics.LoadCatalog()
	if err != nil {
		return err
	}

	var results *cache.Store[analytics.Result]
	if cfg.CacheEnabled {
		results = cache.NewStore[analytics.Result](cfg.CacheQueryTTL)
	}

	ids := idgen.NewRandomGenerator()
	svc := httpapi.Services{
		Players: usecase.NewPlayerService(sqlstore.NewPlayerRepository(rt.DB), ids, rt.logger),
		Matches: usecase.NewMatchService(sqlstore.NewMatchRepository(rt.DB), ids, rt.logger),
		Venues:  usecase.NewVenueService(sqlstore.NewVenueRepository(rt.DB), ids, rt.logger),
		Teams:   usecase.NewTeamService(sqlstore.NewTeamRepository(rt.DB), ids, rt.logger),
		Series:  usecase.NewSeriesService(sqlstore.NewSeriesRepository(rt.DB), ids, rt.logger),
		Stats:   usecase.NewStatService(sqlstore.NewStatRepository(rt.DB), ids, rt.logger),
		Queries: usecase.NewQueryService(
			catalog,
			sqlstore.NewQueryRunner(rt.DB, rt.ReadOnly),
			results,
			usecase.QueryServiceConfig{Timeout: cfg.QueryTimeout, CustomMaxRows: cfg.QueryCustomMaxRows},
			rt.logger,
		),
	}

	if cfg.CricbuzzAPIKey != "" {
		svc.Ingestion = usecase.NewIngestionService(
			NewCricbuzzClient(cfg, rt.logger),
			sqlstore.NewIngestionWriter(rt.DB),
			cfg.IngestWorkers,
			rt.logger,
		)
		svc.Ingestion.OnChange(svc.Queries.Invalidate)
	} else {
		rt.logger.Info("ingestion disabled", "reason", "CRICBUZZ_API_KEY is empty")
	}

	if cfg.QStashToken != "" {
		svc.Scheduler = usecase.NewRefreshSchedulerService(
			NewQStashPublisher(cfg, rt.logger),
			usecase.RefreshSchedulerConfig{Bucket: cfg.QStashDedupWindow},
			rt.logger,
		)
	}

	// Any committed write can change a catalog answer.
	svc.Players.OnChange(svc.Queries.Invalidate)
	svc.Matches.OnChange(svc.Queries.Invalidate)
	svc.Venues.OnChange(svc.Queries.Invalidate)
	svc.Teams.OnChange(svc.Queries.Invalidate)
	svc.Series.OnChange(svc.Queries.Invalidate)
	svc.Stats.OnChange(svc.Queries.Invalidate)

	rt.Services = svc
	return nil
}

// NewCricbuzzClient builds the provider client from the CRICBUZZ_* keys.
func NewCricbuzzClient(cfg config.Config, logger *logging.Logger) *cricbuzz.Client {
	return cricbuzz.NewClient(cricbuzz.ClientConfig{
		BaseURL:       cfg.CricbuzzBaseURL,
		Host:          cfg.CricbuzzHost,
		APIKey:        cfg.CricbuzzAPIKey,
		Timeout:       cfg.CricbuzzTimeout,
		RatePerSecond: cfg.CricbuzzRatePerSecond,
		Logger:        logger,
		Retry: resilience.RetryPolicy{
			MaxRetries: cfg.CricbuzzMaxRetries,
			BaseDelay:  cfg.CricbuzzBackoffBase,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.CricbuzzCircuitEnabled,
			FailureThreshold: cfg.CricbuzzCircuitFailureCount,
			OpenTimeout:      cfg.CricbuzzCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.CricbuzzCircuitHalfOpenMaxReq,
		},
	})
}

// NewQStashPublisher builds the job queue that delivers scheduled refreshes
// back to this API, authenticated with the admin token.
func NewQStashPublisher(cfg config.Config, logger *logging.Logger) *jobqueue.QStashPublisher {
	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:        cfg.QStashBaseURL,
		Token:          cfg.QStashToken,
		TargetBaseURL:  cfg.QStashTargetBaseURL,
		Retries:        cfg.QStashRetries,
		AdminToken:     cfg.AdminToken,
		Timeout:        cfg.QStashTimeout,
		CircuitBreaker: resilience.DefaultCircuitBreakerConfig(),
	}, logger)
}

// Close releases both store handles.
func (rt *Runtime) Close() error {
	var errs []error
	if rt.ReadOnly != nil {
		errs = append(errs, rt.ReadOnly.Close())
	}
	if rt.DB != nil {
		errs = append(errs, rt.DB.Close())
	}
	return errors.Join(errs...)
}

// NewHTTPServer mounts the JSON API over the runtime's services.
func NewHTTPServer(cfg config.Config, rt *Runtime, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	handler := httpapi.NewHandler(rt.Services, logger)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminToken:         cfg.AdminToken,
	})

	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}, nil
}
