package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/tuanvumaihuynh/storefront/internal/config"
	"github.com/tuanvumaihuynh/storefront/internal/log"
	"github.com/tuanvumaihuynh/storefront/internal/storage/db"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Printf("error running migrate application: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	flags := pflag.NewFlagSet("sf-migrate", pflag.ContinueOnError)
	command := flags.StringP("command", "c", string(db.MigrateUp), "migration command: up, down, status or reset")
	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	logger.InfoContext(ctx, "starting database migration", slog.String("command", *command))

	if err := db.Migrate(ctx, pgxPool, db.MigrateCommand(*command)); err != nil {
		return fmt.Errorf("error migrating database: %w", err)
	}

	logger.InfoContext(ctx, "database migration completed successfully")

	return nil
}
