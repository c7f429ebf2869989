package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Run применяет все встроенные миграции. Повторный запуск без новых миграций ничего не делает.
func Run(db *sql.DB) (uint, error) {
	if db == nil {
		return 0, errors.New("migration: database handle is required")
	}

	latest, err := LatestVersion()
	if err != nil {
		return 0, err
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return 0, fmt.Errorf("migration: open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return 0, fmt.Errorf("migration: create source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, fmt.Errorf("migration: create driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return 0, fmt.Errorf("migration: create migrator: %w", err)
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return 0, err
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration: apply: %w", err)
	}

	current, err := ensureNotDirty(migrator)
	if err != nil {
		return 0, err
	}
	if current != latest {
		return 0, fmt.Errorf("migration: schema version mismatch: got %d want %d", current, latest)
	}

	return current, nil
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("migration: read version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("migration: database is dirty at version %d", version)
	}
	return version, nil
}
