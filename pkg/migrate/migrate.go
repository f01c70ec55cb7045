package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// DefaultDir is the migrations directory relative to the repo root.
const DefaultDir = "pkg/migrate/migrations"

// Run dispatches a goose command (up, down, status, ...) against the given
// database handle.
func Run(ctx context.Context, db *sql.DB, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("database handle is required")
	}
	if dir == "" {
		return fmt.Errorf("migrations directory is required")
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("configuring goose dialect: %w", err)
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}
