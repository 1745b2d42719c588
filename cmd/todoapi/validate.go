package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/sufield/todoapi/internal/config"
)

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, `Validate a todoapi configuration file

USAGE:
    todoapi validate <config-file>

Environment overrides (DATABASE_URL, STORE_DRIVER, ...) are applied before
validation, exactly as serve would see them.`)
	}
	if help, err := parseFlags(fs, args); help || err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("config file path required")
	}

	path := fs.Arg(0)
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "✓ %s is valid\n\n", path)
	printConfigSummary(cfg)
	return nil
}

func printConfigSummary(cfg config.Config) {
	table := NewTableWriter([]string{"Setting", "Value"})
	table.AddRow("http.address", cfg.HTTP.Address)
	table.AddRow("http.cors_origins", strings.Join(cfg.HTTP.CORSOrigins, ", "))
	table.AddRow("http.request_timeout", cfg.HTTP.RequestTimeout.String())
	table.AddRow("store.driver", cfg.Store.Driver)
	table.AddRow("store.auto_migrate", strconv.FormatBool(cfg.Store.AutoMigrate))
	table.AddRow("auth.trust_proxy_headers", strconv.FormatBool(cfg.Auth.TrustProxyHeaders))
	table.AddRow("tls.mode", cfg.TLS.Mode)
	if cfg.TLS.Mode == config.TLSModeSPIFFE {
		table.AddRow("tls.allowed_proxy_id", cfg.TLS.AllowedProxyID)
		table.AddRow("tls.allowed_proxy_trust_domain", cfg.TLS.AllowedProxyTrustDomain)
	}
	table.AddRow("items.undo_window", cfg.Items.UndoWindow.String())
	table.AddRow("items.purge_interval", cfg.Items.PurgeInterval.String())
	table.AddRow("items.purge_batch", strconv.Itoa(cfg.Items.PurgeBatch))
	table.AddRow("log.level", cfg.Log.Level)
	table.AddRow("log.format", cfg.Log.Format)
	table.Print(stdout)
}
