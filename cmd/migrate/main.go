// Package main - управление схемой базы данных Attendance Hub.
//
// Usage:
//
//	migrate up      apply pending migrations
//	migrate down    roll back the last applied migration
//	migrate status  list migrations and whether they are applied
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satyalok/attendance-hub/config"
	"github.com/satyalok/attendance-hub/internal/infrastructure/persistence/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	timeout := fs.Duration("timeout", 2*time.Minute, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one of: up, down, status")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		return fmt.Errorf("STORAGE_DRIVER is %q, nothing to migrate", cfg.Storage.Driver)
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL
	pgCfg.MaxConns = 2
	pgCfg.MinConns = 0

	conn, err := postgres.NewConnection(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)

	switch cmd := fs.Arg(0); cmd {
	case "up":
		if err := migrator.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "migrations applied")
	case "down":
		if err := migrator.Rollback(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "last migration rolled back")
	case "status":
		if err := migrator.EnsureMigrationTable(ctx); err != nil {
			return err
		}
		applied, err := migrator.GetAppliedMigrations(ctx)
		if err != nil {
			return err
		}
		for _, m := range postgres.GetMigrations() {
			state := "pending"
			if at, ok := applied[m.Version]; ok {
				state = "applied " + at.UTC().Format(time.RFC3339)
			}
			fmt.Fprintf(out, "%04d  %-32s %s\n", m.Version, m.Name, state)
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
