package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/sufield/todoapi/internal/adapters/inbound/httpapi"
)

func serveCommand(v VersionInfo) func(args []string) error {
	return func(args []string) error {
		fs := flag.NewFlagSet("serve", flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Path to a YAML or TOML config file")
		if help, err := parseFlags(fs, args); help || err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, *configPath, v)
	}
}

func serve(ctx context.Context, configPath string, v VersionInfo) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	logger.Info("starting todoapi", "version", v.Version, "commit", v.Commit, "store", cfg.Store.Driver, "tls", cfg.TLS.Mode)

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	application, err := newApplication(b, cfg, logger)
	if err != nil {
		_ = b.Close()
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	t, err := newTransport(ctx, cfg.TLS)
	if err != nil {
		return err
	}
	defer func() { _ = t.Close() }()

	router, err := httpapi.NewRouter(httpapi.RouterConfig{
		Lists:          application.Lists,
		Items:          application.Items,
		Store:          application.Store,
		Identity:       newIdentity(cfg, b.sessions, application.Clock, t),
		Logger:         logger,
		Version:        v.Version,
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	})
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(httpapi.ServerConfig{
		Address:           cfg.HTTP.Address,
		Handler:           router,
		TLSConfig:         t.tlsConfig,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, cfg.HTTP.ShutdownTimeout)
	})
	g.Go(func() error {
		return <-application.Reaper.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("todoapi stopped")
	return nil
}
