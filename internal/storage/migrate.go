package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Apply runs every pending migration on m and closes it. The schema version
// reached is logged under the given backend name.
func Apply(m *migrate.Migrate, backend string) error {
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply %s migrations: %w", backend, err)
	}
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return nil
	case err != nil:
		return fmt.Errorf("read %s schema version: %w", backend, err)
	case dirty:
		return fmt.Errorf("%s schema is dirty at version %d", backend, version)
	}
	slog.Debug("Schema ready", "component", "storage", "backend", backend, "version", version)
	return nil
}

// RunMigrations brings the SQLite schema at dbPath up to date, including
// the backfill of date-only timestamps.
func RunMigrations(dbPath string) error {
	// The migrator closes its handle, so it gets one of its own.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		db.Close()
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("create migrate instance: %w", err)
	}
	return Apply(m, "sqlite")
}
