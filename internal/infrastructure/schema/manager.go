package schema

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/riskibarqy/cricket-analytics/internal/config"
	dbpkg "github.com/riskibarqy/cricket-analytics/internal/infrastructure/database"
	"github.com/riskibarqy/cricket-analytics/internal/platform/logging"
	"github.com/riskibarqy/cricket-analytics/internal/usecase"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// Manager provisions the store schema. Every migration only creates what is
// missing, so applying it to a populated store never drops data.
type Manager struct {
	driver string
	dsn    string
	logger *logging.Logger
}

func NewManager(driver, dsn string, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{driver: driver, dsn: dsn, logger: logger}
}

// EnsureSchema creates all tables and constraints that are absent. It is
// safe to call on every startup.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	return m.withMigrator(ctx, func(mg *migrate.Migrate) error {
		err := mg.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.DebugContext(ctx, "schema already up to date", "driver", m.driver)
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: apply migrations: %v", usecase.ErrSchema, err)
		}

		version, _, _ := mg.Version()
		m.logger.InfoContext(ctx, "schema ensured", "driver", m.driver, "version", version)
		return nil
	})
}

// Version reports the applied schema version. ok is false on an empty store.
func (m *Manager) Version(ctx context.Context) (version uint, dirty bool, ok bool, err error) {
	err = m.withMigrator(ctx, func(mg *migrate.Migrate) error {
		v, d, verr := mg.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return fmt.Errorf("%w: read version: %v", usecase.ErrSchema, verr)
		}
		version, dirty, ok = v, d, true
		return nil
	})
	return version, dirty, ok, err
}

// Force marks version as applied and clears the dirty flag after a failed
// migration was repaired by hand.
func (m *Manager) Force(ctx context.Context, version int) error {
	if version < 0 {
		return fmt.Errorf("%w: version must be >= 0", usecase.ErrInvalidInput)
	}
	return m.withMigrator(ctx, func(mg *migrate.Migrate) error {
		if err := mg.Force(version); err != nil {
			return fmt.Errorf("%w: force version %d: %v", usecase.ErrSchema, version, err)
		}
		m.logger.WarnContext(ctx, "schema version forced", "driver", m.driver, "version", version)
		return nil
	})
}

func (m *Manager) withMigrator(ctx context.Context, fn func(*migrate.Migrate) error) error {
	mg, err := m.newMigrator()
	if err != nil {
		return err
	}
	defer func() {
		if srcErr, dbErr := mg.Close(); srcErr != nil || dbErr != nil {
			m.logger.WarnContext(ctx, "close migrator failed", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			select {
			case mg.GracefulStop <- true:
			default:
			}
		case <-done:
		}
	}()

	return fn(mg)
}

// newMigrator opens a dedicated connection because closing a migrator also
// closes the database handle it was given.
func (m *Manager) newMigrator() (*migrate.Migrate, error) {
	dir, driverName, dsn := "migrations/postgres", m.driver, m.dsn
	if m.driver == config.DriverSQLite {
		dir = "migrations/sqlite"
		dsn = dbpkg.SQLiteDSN(m.dsn, false)
	} else if m.driver != config.DriverPostgres {
		return nil, fmt.Errorf("%w: unsupported driver %q", usecase.ErrSchema, m.driver)
	}

	sub, err := fs.Sub(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("%w: open embedded migrations: %v", usecase.ErrSchema, err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: read embedded migrations: %v", usecase.ErrSchema, err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", usecase.ErrSchema, driverName, err)
	}

	var driver database.Driver
	if m.driver == config.DriverSQLite {
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	} else {
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: connect migration driver: %v", usecase.ErrSchema, err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, m.driver, driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("%w: create migrator: %v", usecase.ErrSchema, err)
	}
	return mg, nil
}
