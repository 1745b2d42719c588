package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/sufield/todoapi/internal/logging"
	"github.com/sufield/todoapi/internal/mtls"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := c.HTTP.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if len(c.Auth.DevSessions) > 0 && c.Store.Driver != DriverMemory {
		return invalid("auth.dev_sessions requires store.driver %q", DriverMemory)
	}
	for i, s := range c.Auth.DevSessions {
		if s.Token == "" || s.UserID == "" {
			return invalid("auth.dev_sessions[%d]: token and user_id must be set", i)
		}
	}
	if err := c.TLS.validate(); err != nil {
		return err
	}
	if err := c.Items.validate(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return invalid("log.format: %v", err)
	}
	return nil
}

func (h HTTPSection) validate() error {
	if _, _, err := net.SplitHostPort(h.Address); err != nil {
		return invalid("http.address %q: %v", h.Address, err)
	}
	if h.RequestTimeout < 0 {
		return invalid("http.request_timeout must not be negative")
	}
	for _, origin := range h.CORSOrigins {
		if origin == "*" {
			return invalid("http.cors_origins: wildcard is not allowed with credentials")
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return invalid("http.cors_origins: %q is not an origin", origin)
		}
	}
	return nil
}

func (s StoreSection) validate() error {
	switch s.Driver {
	case DriverPostgres:
		if s.DSN == "" {
			return invalid("store.dsn (or DATABASE_URL) must be set for the postgres driver")
		}
	case DriverMemory:
	default:
		return invalid("store.driver must be %q or %q, got %q", DriverPostgres, DriverMemory, s.Driver)
	}
	if s.MaxOpenConns < 0 || s.MaxIdleConns < 0 {
		return invalid("store connection limits must not be negative")
	}
	return nil
}

func (t TLSSection) validate() error {
	switch t.Mode {
	case TLSModeNone:
		return nil
	case TLSModeSPIFFE:
		if err := t.Policy().Validate(); err != nil {
			return invalid("tls: %v", err)
		}
		return nil
	default:
		return invalid("tls.mode must be %q or %q, got %q", TLSModeNone, TLSModeSPIFFE, t.Mode)
	}
}

func (i ItemsSection) validate() error {
	if i.UndoWindow <= 0 {
		return invalid("items.undo_window must be positive")
	}
	if i.PurgeInterval <= 0 {
		return invalid("items.purge_interval must be positive")
	}
	if i.PurgeBatch <= 0 {
		return invalid("items.purge_batch must be positive")
	}
	return nil
}

// Policy returns the mTLS client policy for the proxy.
func (t TLSSection) Policy() mtls.Policy {
	return mtls.Policy{AllowedID: t.AllowedProxyID, AllowedTrustDomain: t.AllowedProxyTrustDomain}
}
