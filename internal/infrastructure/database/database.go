package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"

	"github.com/riskibarqy/cricket-analytics/internal/config"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// Options describes one connection pool.
type Options struct {
	Driver          string
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// ReadOnly opens a handle that cannot modify the store. For SQLite this
	// is enforced by PRAGMA query_only on every connection; for Postgres the
	// URL is expected to carry read-only credentials.
	ReadOnly bool
}

// Open connects, applies pool limits and pings. The handle is traced with
// OpenTelemetry spans.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	driver := strings.TrimSpace(opts.Driver)
	dsn := strings.TrimSpace(opts.URL)
	if dsn == "" {
		return nil, fmt.Errorf("database url is required")
	}

	system := "postgresql"
	switch driver {
	case config.DriverPostgres:
	case config.DriverSQLite:
		system = "sqlite"
		dsn = SQLiteDSN(dsn, opts.ReadOnly)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := otelsqlx.Open(driver, dsn,
		otelsql.WithAttributes(attribute.String("db.system", system)),
		otelsql.WithDBName(DBNameFromURL(opts.URL)),
		otelsql.WithQueryFormatter(formatQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}

	return db, nil
}

// FromConfig opens the primary pool described by cfg.
func FromConfig(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	return Open(ctx, Options{
		Driver:          cfg.DBDriver,
		URL:             cfg.DBURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
}

// ReadOnlyFromConfig opens the pool used for free-form queries. SQLite
// always gets a query_only handle on the same file. Postgres gets a handle
// only when DB_READONLY_URL is configured; otherwise it returns nil and the
// caller falls back to read-only transactions on the primary pool.
func ReadOnlyFromConfig(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	url := cfg.DBReadOnlyURL
	if url == "" {
		if cfg.DBDriver != config.DriverSQLite {
			return nil, nil
		}
		url = cfg.DBURL
	}
	return Open(ctx, Options{
		Driver:       cfg.DBDriver,
		URL:          url,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
		ReadOnly:     true,
	})
}
