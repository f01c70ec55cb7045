package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/rcastillo/storefront-backend/pkg/config"
	"github.com/rcastillo/storefront-backend/pkg/migrate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	dir := flag.String("dir", migrate.DefaultDir, "directory with migration files")
	flag.Parse()

	command := "up"
	var commandArgs []string
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
		commandArgs = args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sqlDB, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	return migrate.Run(context.Background(), sqlDB, *dir, command, commandArgs...)
}
