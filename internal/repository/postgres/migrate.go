package postgres

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"taskboard/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

func newMigrator(connString string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("loading migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, connString)
	if err != nil {
		return nil, fmt.Errorf("creating migrator: %w", err)
	}
	return m, nil
}

// MigrateUp applies all pending schema migrations.
func MigrateUp(connString string) error {
	m, err := newMigrator(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Error("Repository: applying migrations", err)
		return fmt.Errorf("applying migrations: %w", err)
	}
	logger.Info("Repository: migrations applied")
	return nil
}

// MigrateDown rolls every migration back.
func MigrateDown(connString string) error {
	m, err := newMigrator(connString)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && err != migrate.ErrNoChange {
		logger.Error("Repository: rolling back migrations", err)
		return fmt.Errorf("rolling back migrations: %w", err)
	}
	logger.Info("Repository: migrations rolled back")
	return nil
}
