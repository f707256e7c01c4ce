package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DavisKoreal/Emay/internal/core/logger"
	"github.com/DavisKoreal/Emay/internal/database/migration"
)

// RunMigrations applies any pending schema migrations at startup.
func RunMigrations(db *sql.DB, migrationsDir string) error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	log := logger.NewLogger()
	defer log.Sync()

	absPath, err := filepath.Abs(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}
	migrationsURL := "file://" + absPath

	return migration.Migrate(dbURL, migrationsURL, true, log)
}
