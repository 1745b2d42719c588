// Package config loads todoapi configuration from YAML or TOML files,
// a .env file and environment variables, in that order of precedence
// (environment wins).
package config

import "time"

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// TLS modes.
const (
	TLSModeNone   = "none"
	TLSModeSPIFFE = "spiffe"
)

// Config is the complete process configuration.
type Config struct {
	HTTP  HTTPSection  `yaml:"http" toml:"http"`
	Store StoreSection `yaml:"store" toml:"store"`
	Auth  AuthSection  `yaml:"auth" toml:"auth"`
	TLS   TLSSection   `yaml:"tls" toml:"tls"`
	Items ItemsSection `yaml:"items" toml:"items"`
	Log   LogSection   `yaml:"log" toml:"log"`
}

// HTTPSection configures the API listener.
type HTTPSection struct {
	Address           string        `yaml:"address" toml:"address"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" toml:"read_header_timeout"`
	ReadTimeout       time.Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" toml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`

	// RequestTimeout bounds each request's context.
	RequestTimeout time.Duration `yaml:"request_timeout" toml:"request_timeout"`

	// CORSOrigins are the browser origins allowed to call the API with
	// credentials.
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins"`
}

// StoreSection selects and configures persistence.
type StoreSection struct {
	// Driver is "postgres" or "memory".
	Driver          string        `yaml:"driver" toml:"driver"`
	DSN             string        `yaml:"dsn" toml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" toml:"conn_max_lifetime"`

	// AutoMigrate applies pending migrations when serve starts.
	AutoMigrate bool `yaml:"auto_migrate" toml:"auto_migrate"`
}

// AuthSection configures identity resolution.
type AuthSection struct {
	// CookieNames override the session cookie names tried, in order.
	CookieNames []string `yaml:"cookie_names" toml:"cookie_names"`

	// TrustProxyHeaders enables X-User-* headers from the frontend proxy.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers" toml:"trust_proxy_headers"`

	// DevSessions seed the in-memory session store. Only valid with the
	// memory driver.
	DevSessions []DevSession `yaml:"dev_sessions" toml:"dev_sessions"`
}

// DevSession is a fixed session token for local development.
type DevSession struct {
	Token  string `yaml:"token" toml:"token"`
	UserID string `yaml:"user_id" toml:"user_id"`
	Email  string `yaml:"email" toml:"email"`
	Name   string `yaml:"name" toml:"name"`
}

// TLSSection configures SPIFFE mTLS between the proxy and the API.
type TLSSection struct {
	// Mode is "none" or "spiffe".
	Mode string `yaml:"mode" toml:"mode"`

	// WorkloadSocket is the SPIFFE Workload API address. Empty defers to
	// SPIFFE_ENDPOINT_SOCKET.
	WorkloadSocket string `yaml:"workload_socket" toml:"workload_socket"`

	// InitialFetchTimeout bounds the wait for the first SVID at startup.
	InitialFetchTimeout time.Duration `yaml:"initial_fetch_timeout" toml:"initial_fetch_timeout"`

	AllowedProxyID          string `yaml:"allowed_proxy_id" toml:"allowed_proxy_id"`
	AllowedProxyTrustDomain string `yaml:"allowed_proxy_trust_domain" toml:"allowed_proxy_trust_domain"`
}

// ItemsSection tunes the item lifecycle.
type ItemsSection struct {
	UndoWindow    time.Duration `yaml:"undo_window" toml:"undo_window"`
	PurgeInterval time.Duration `yaml:"purge_interval" toml:"purge_interval"`
	PurgeBatch    int           `yaml:"purge_batch" toml:"purge_batch"`
}

// LogSection configures the process logger.
type LogSection struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}
