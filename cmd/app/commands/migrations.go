package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/orders/internal/database"
)

// RunMigrations applies every pending migration for the configured driver.
// Returns nil when the schema is already up to date.
func RunMigrations(logger *slog.Logger, dbDriver, dbConnectionString string) error {
	logger.Info("running database migrations",
		slog.String("driver", dbDriver),
	)

	migrationsPath, databaseURL, err := migrationSource(dbDriver, dbConnectionString)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	m, err := migrate.New(migrationsPath, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// migrationSource returns the migration directory and the database URL understood by migrate.
// MySQL DSNs ("user:pass@tcp(host)/db") are prefixed with the mysql scheme.
func migrationSource(dbDriver, dbConnectionString string) (string, string, error) {
	switch {
	case database.IsPostgres(dbDriver):
		return "file://migrations/postgresql", dbConnectionString, nil
	case dbDriver == database.DriverMySQL:
		if !strings.HasPrefix(dbConnectionString, "mysql://") {
			dbConnectionString = "mysql://" + dbConnectionString
		}
		return "file://migrations/mysql", dbConnectionString, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver: %s", dbDriver)
	}
}
