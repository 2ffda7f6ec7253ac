// Package migration applies the versioned PostgreSQL schema with
// golang-migrate. SQLite deployments use gorm AutoMigrate instead.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/retail/backend/migrations"
	"go.uber.org/zap"
)

// Migrator wraps a golang-migrate instance bound to its own connection
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// Open connects to dsn through lib/pq and loads the embedded migrations.
// The connection is private to the migrator and released by Close.
func Open(dsn string, logger *zap.Logger) (*Migrator, error) {
	return OpenSource(dsn, "", logger)
}

// OpenSource is Open with migrations read from dir; an empty dir uses the
// embedded set
func OpenSource(dsn, dir string, logger *zap.Logger) (*Migrator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping migration connection: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create postgres migration driver: %w", err)
	}

	var m *migrate.Migrate
	if dir == "" {
		m, err = newEmbedded(migrations.FS, driver)
	} else {
		m, err = migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	}
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return &Migrator{m: m, logger: logger}, nil
}

func newEmbedded(fsys fs.FS, driver database.Driver) (*migrate.Migrate, error) {
	source, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", source, "postgres", driver)
}

// Up applies every pending migration
func (mg *Migrator) Up() error {
	return mg.run("up", mg.m.Up)
}

// Down rolls back every migration
func (mg *Migrator) Down() error {
	return mg.run("down", mg.m.Down)
}

// Steps applies n migrations forward, or -n backward when n is negative
func (mg *Migrator) Steps(n int) error {
	return mg.run(fmt.Sprintf("steps %d", n), func() error { return mg.m.Steps(n) })
}

// GoTo migrates up or down to version
func (mg *Migrator) GoTo(version uint) error {
	return mg.run(fmt.Sprintf("goto %d", version), func() error { return mg.m.Migrate(version) })
}

func (mg *Migrator) run(name string, fn func() error) error {
	mg.logger.Info("Running migration", zap.String("command", name))
	err := fn()
	if errors.Is(err, migrate.ErrNoChange) {
		mg.logger.Info("Schema already up to date", zap.String("command", name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s: %w", name, err)
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.logger.Info("Migration finished",
		zap.String("command", name),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

// Version returns the applied version; zero means nothing was applied
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read migration version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running it. It is the way out
// of a dirty state after a failed migration was repaired by hand.
func (mg *Migrator) Force(version int) error {
	mg.logger.Warn("Forcing migration version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and the private connection
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
