package repository

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/joseph-ayodele/procurement-tracker/internal/common"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies every pending migration for cfg.Driver. It opens its own connection
// because the migrate drivers close the handle they are given.
func Migrate(cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		sqlDriver string
		dsn       = cfg.DSN
	)
	switch cfg.Driver {
	case DriverPostgres:
		sqlDriver = "pgx"
	case DriverSQLite:
		sqlDriver = "sqlite"
		dsn = sqliteDSN(dsn)
	default:
		return fmt.Errorf("unknown database driver %q: %w", cfg.Driver, common.ErrInvalidInput)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return fmt.Errorf("open for migrations: %w", err)
	}

	var drv database.Driver
	if cfg.Driver == DriverPostgres {
		drv, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	} else {
		drv, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+cfg.Driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, cfg.Driver, drv)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("db.migrate.close_failed", "source_error", srcErr, "db_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	logger.Info("db.migrate.ok", "driver", cfg.Driver, "version", version, "dirty", dirty)
	return nil
}
