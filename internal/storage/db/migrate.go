package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type MigrateCommand string

const (
	MigrateUp     MigrateCommand = "up"
	MigrateDown   MigrateCommand = "down"
	MigrateStatus MigrateCommand = "status"
	MigrateReset  MigrateCommand = "reset"
)

// Migrate runs the embedded goose migrations against the pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, command MigrateCommand) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	var err error
	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, sqlDB, "migrations")
	case MigrateDown:
		err = goose.DownContext(ctx, sqlDB, "migrations")
	case MigrateStatus:
		err = goose.StatusContext(ctx, sqlDB, "migrations")
	case MigrateReset:
		err = goose.ResetContext(ctx, sqlDB, "migrations")
	default:
		return fmt.Errorf("unknown migrate command: %s", command)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	return nil
}
