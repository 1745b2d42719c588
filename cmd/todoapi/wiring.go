package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sufield/todoapi/internal/adapters/outbound/identity"
	"github.com/sufield/todoapi/internal/adapters/outbound/inmemory"
	"github.com/sufield/todoapi/internal/adapters/outbound/postgres"
	"github.com/sufield/todoapi/internal/app"
	"github.com/sufield/todoapi/internal/config"
	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/logging"
	"github.com/sufield/todoapi/internal/mtls"
	"github.com/sufield/todoapi/internal/ports"
)

// devSessionLifetime keeps configured development sessions valid.
const devSessionLifetime = 365 * 24 * time.Hour

// parseFlags parses args, treating -h as success.
func parseFlags(fs *flag.FlagSet, args []string) (help bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// loadConfig reads .env, then path, then the environment, and validates.
func loadConfig(path string) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*slog.Logger, error) {
	return logging.New(os.Stderr, logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Prefix: "todoapi"})
}

// backend is an opened store and the session store that goes with it.
type backend struct {
	store    ports.Store
	sessions ports.SessionStore
	pg       *postgres.Store
}

func (b *backend) Close() error {
	return b.store.Close()
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		sessions := inmemory.NewSessionStore()
		expires := time.Now().Add(devSessionLifetime)
		for _, s := range cfg.Auth.DevSessions {
			sessions.Put(s.Token, ports.Session{
				User:      domain.User{ID: s.UserID, Email: s.Email, Name: s.Name},
				ExpiresAt: expires,
			})
		}
		logger.Warn("using in-memory store; data is lost on exit", "dev_sessions", len(cfg.Auth.DevSessions))
		return &backend{store: inmemory.NewStore(), sessions: sessions}, nil

	case config.DriverPostgres:
		pg, err := postgres.Open(ctx, postgres.Config{
			DSN:             cfg.Store.DSN,
			MaxOpenConns:    cfg.Store.MaxOpenConns,
			MaxIdleConns:    cfg.Store.MaxIdleConns,
			ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
		}, postgres.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if cfg.Store.AutoMigrate {
			n, err := postgres.MigrateUp(ctx, pg.DB())
			if err != nil {
				_ = pg.Close()
				return nil, fmt.Errorf("auto-migrate: %w", err)
			}
			logger.Info("migrations applied", "count", n)
		}
		return &backend{store: pg, sessions: postgres.NewSessionStore(pg.DB()), pg: pg}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newApplication(b *backend, cfg config.Config, logger *slog.Logger) (*app.Application, error) {
	return app.New(b.store, nil,
		app.WithUndoWindow(cfg.Items.UndoWindow),
		app.WithPurgeInterval(cfg.Items.PurgeInterval),
		app.WithPurgeBatch(cfg.Items.PurgeBatch),
		app.WithLogger(logger),
	)
}

// transport is the optional mTLS setup for serve.
type transport struct {
	source    *mtls.Source
	tlsConfig *tls.Config
	peerCheck func(*http.Request) bool
}

func (t *transport) Close() error {
	if t == nil || t.source == nil {
		return nil
	}
	return t.source.Close()
}

func newTransport(ctx context.Context, cfg config.TLSSection) (*transport, error) {
	if cfg.Mode != config.TLSModeSPIFFE {
		return &transport{}, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.InitialFetchTimeout)
	defer cancel()
	src, err := mtls.NewSource(fetchCtx, cfg.WorkloadSocket)
	if err != nil {
		return nil, err
	}
	x509src := src.X509Source()

	policy := cfg.Policy()
	tlsConfig, err := mtls.NewServerTLSConfig(x509src, x509src, policy)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	svid, err := x509src.GetX509SVID()
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to get server SVID: %w", err)
	}
	return &transport{
		source:    src,
		tlsConfig: tlsConfig,
		peerCheck: mtls.ProxyTrust(policy, svid.ID.TrustDomain()),
	}, nil
}

func newIdentity(cfg config.Config, sessions ports.SessionStore, clock ports.Clock, t *transport) ports.IdentityResolver {
	return identity.Chain{
		identity.HeaderResolver{Trusted: cfg.Auth.TrustProxyHeaders, PeerCheck: t.peerCheck},
		identity.NewSessionResolver(sessions, clock, cfg.Auth.CookieNames...),
	}
}
