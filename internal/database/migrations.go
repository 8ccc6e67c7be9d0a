package database

import (
	"database/sql"
	"fmt"

	_ "github.com/rebecca-roussel/ecoride/internal/database/migrations"
	"github.com/rebecca-roussel/ecoride/pkg/logger"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the pending goose migrations. dir is only used by
// goose to track versions; the migrations themselves are compiled in.
func RunMigrations(db *sql.DB, dir string, log *logger.Logger) error {
	goose.SetLogger(log)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations completed successfully")
	return nil
}
