package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/internal/config"
)

const migrationsTable = "droptracker_schema_migrations"

// ErrDirtySchema means a previous migration failed half way and the schema
// needs a manual `migrate force` before the server may start.
var ErrDirtySchema = errors.New("database schema is dirty")

// migrateLogger routes golang-migrate progress through zap.
type migrateLogger struct {
	log *zap.SugaredLogger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.log.Infof(strings.TrimRight(format, "\n"), v...)
}

func (l migrateLogger) Verbose() bool {
	return l.log.Desugar().Core().Enabled(zap.DebugLevel)
}

// RunMigrations brings the schema up to the newest version shipped in
// MIGRATIONS_PATH. It refuses to run on a dirty schema.
func RunMigrations(cfg *config.Config, logger *zap.Logger) error {
	if cfg == nil || !cfg.Migrations.Enabled {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database url is empty")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := newMigrator(db, cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	m.Log = migrateLogger{log: logger.Named("migrate").Sugar()}

	from, err := schemaVersion(m)
	if err != nil {
		return err
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("database schema up to date", zap.Uint("version", from))
		return nil
	case err != nil:
		return fmt.Errorf("apply migrations from version %d: %w", from, err)
	}

	to, err := schemaVersion(m)
	if err != nil {
		return err
	}
	logger.Info("database migrations applied", zap.Uint("from", from), zap.Uint("to", to))
	return nil
}

func newMigrator(db *sql.DB, cfg *config.Config) (*migrate.Migrate, error) {
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, err
	}
	source := "file://" + filepath.ToSlash(cfg.Migrations.Path)
	return migrate.NewWithDatabaseInstance(source, cfg.Database.Name, driver)
}

// schemaVersion reports the applied version, zero for an empty database.
func schemaVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("%w at version %d", ErrDirtySchema, version)
	}
	return version, nil
}
