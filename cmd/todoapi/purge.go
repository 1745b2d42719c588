package main

import (
	"context"
	"flag"
	"fmt"
)

func purgeCommand(args []string) error {
	fs := flag.NewFlagSet("purge", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to a YAML or TOML config file")
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	application, err := newApplication(b, cfg, logger)
	if err != nil {
		_ = b.Close()
		return err
	}
	defer func() { _ = application.Close() }()

	n, err := application.Reaper.Sweep(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "purged %d item(s)\n", n)
	return nil
}
