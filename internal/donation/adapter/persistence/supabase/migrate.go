package supabase

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator builds a migrate instance over the embedded schema and seed scripts.
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	return m, nil
}

// schemaMigrator is the part of *migrate.Migrate the adapter drives.
type schemaMigrator interface {
	Up() error
	Force(version int) error
}

// RunMigrations applies every pending migration. An up-to-date schema is not an error.
func RunMigrations(databaseURL string) error {
	return withMigrator(databaseURL, func(m schemaMigrator) error {
		return applyMigrations(m, false)
	})
}

// ReapplyMigrations runs every migration again, discarding a version record
// left behind by tables dropped by hand. The scripts are idempotent.
func ReapplyMigrations(databaseURL string) error {
	return withMigrator(databaseURL, func(m schemaMigrator) error {
		return applyMigrations(m, true)
	})
}

func withMigrator(databaseURL string, fn func(schemaMigrator) error) error {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

func applyMigrations(m schemaMigrator, fromScratch bool) error {
	if fromScratch {
		if err := m.Force(database.NilVersion); err != nil {
			return fmt.Errorf("failed to reset migration version: %w", err)
		}
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
