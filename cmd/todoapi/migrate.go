package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/sufield/todoapi/internal/adapters/outbound/postgres"
	"github.com/sufield/todoapi/internal/config"
)

func migrateCommand(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML or TOML config file")
	down := fs.Int("down", 0, "Roll back this many migrations instead of applying")
	status := fs.Bool("status", false, "Show applied and pending migrations")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if *down < 0 {
		return fmt.Errorf("--down must not be negative")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if cfg.Store.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires store.driver %q, got %q", config.DriverPostgres, cfg.Store.Driver)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := postgres.Open(ctx, postgres.Config{DSN: cfg.Store.DSN}, postgres.WithLogger(logger))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	switch {
	case *status:
		applied, pending, err := postgres.MigrationStatus(store.DB())
		if err != nil {
			return err
		}
		printMigrationStatus(stdout, applied, pending)
		return nil
	case *down > 0:
		n, err := postgres.MigrateDown(ctx, store.DB(), *down)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "rolled back %d migration(s)\n", n)
		return nil
	default:
		n, err := postgres.MigrateUp(ctx, store.DB())
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "applied %d migration(s)\n", n)
		return nil
	}
}

func printMigrationStatus(w io.Writer, applied, pending []string) {
	table := NewTableWriter([]string{"Migration", "State"})
	for _, id := range applied {
		table.AddRow(id, "applied")
	}
	for _, id := range pending {
		table.AddRow(id, "pending")
	}
	table.Print(w)
}
