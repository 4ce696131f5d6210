package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

type migrator struct {
	db *sqlx.DB

	logger *slog.Logger
}

func NewDatabaseMigrator(db *sqlx.DB, logger *slog.Logger) *migrator {
	return &migrator{
		db:     db,
		logger: logger,
	}
}

// Migrate brings the schema up to date. Safe to call on an already migrated database.
func (m *migrator) Migrate(ctx context.Context) error {
	migrationSource, err := iofs.New(embeddedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrate: failed to create driver from embedded migrations: %w", err)
	}
	defer migrationSource.Close()

	driverName := m.db.DriverName()
	switch driverName {
	case SQLITE_DRIVER:
		dbDriver, err := sqlite.WithInstance(m.db.DB, &sqlite.Config{})
		if err != nil {
			return fmt.Errorf("migrate: failed to create sqlite driver: %w", err)
		}
		// NOTE: Not closing the driver, as that would close the shared db
		return m.up(ctx, migrationSource, driverName, dbDriver)
	case POSTGRES_DRIVER:
		conn, err := m.db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("migrate: failed to connect to db: %w", err)
		}
		defer conn.Close()

		dbDriver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
		if err != nil {
			return fmt.Errorf("migrate: failed to create postgres driver: %w", err)
		}
		defer dbDriver.Close()
		return m.up(ctx, migrationSource, driverName, dbDriver)
	}

	return fmt.Errorf("migrate: unsupported driver %s", driverName)
}

func (m *migrator) up(ctx context.Context, migrationSource source.Driver, driverName string, dbDriver migratedb.Driver) error {
	migratorInstance, err := migrate.NewWithInstance("iofs", migrationSource, driverName, dbDriver)
	if err != nil {
		return fmt.Errorf("migrate: failed to create migration instance: %w", err)
	}

	m.logger.InfoContext(ctx, "Starting migrations...", "driver", driverName)
	if err := migratorInstance.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.InfoContext(ctx, "No migrations to run.")
		} else {
			return fmt.Errorf("migrate: failed to migrate: %w", err)
		}
	}
	m.logger.InfoContext(ctx, "Migrations completed successfully.")

	return nil
}
