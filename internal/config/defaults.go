package config

import "time"

const (
	DefaultHTTPAddress         = ":8000"
	DefaultReadHeaderTimeout   = 10 * time.Second
	DefaultReadTimeout         = 30 * time.Second
	DefaultWriteTimeout        = 30 * time.Second
	DefaultIdleTimeout         = 120 * time.Second
	DefaultShutdownTimeout     = 10 * time.Second
	DefaultRequestTimeout      = 15 * time.Second
	DefaultCORSOrigin          = "http://localhost:3001"
	DefaultMaxOpenConns        = 10
	DefaultMaxIdleConns        = 5
	DefaultConnMaxLifetime     = 30 * time.Minute
	DefaultInitialFetchTimeout = 30 * time.Second
	DefaultUndoWindow          = 5 * time.Second
	DefaultPurgeInterval       = 30 * time.Second
	DefaultPurgeBatch          = 500
)

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// applyDefaults fills unset values.
func applyDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = DefaultHTTPAddress
	}
	if cfg.HTTP.ReadHeaderTimeout == 0 {
		cfg.HTTP.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = DefaultReadTimeout
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = DefaultRequestTimeout
	}
	if len(cfg.HTTP.CORSOrigins) == 0 {
		cfg.HTTP.CORSOrigins = []string{DefaultCORSOrigin}
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DriverPostgres
	}
	if cfg.Store.MaxOpenConns == 0 {
		cfg.Store.MaxOpenConns = DefaultMaxOpenConns
	}
	if cfg.Store.MaxIdleConns == 0 {
		cfg.Store.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Store.ConnMaxLifetime == 0 {
		cfg.Store.ConnMaxLifetime = DefaultConnMaxLifetime
	}

	if cfg.TLS.Mode == "" {
		cfg.TLS.Mode = TLSModeNone
	}
	if cfg.TLS.InitialFetchTimeout == 0 {
		cfg.TLS.InitialFetchTimeout = DefaultInitialFetchTimeout
	}

	if cfg.Items.UndoWindow == 0 {
		cfg.Items.UndoWindow = DefaultUndoWindow
	}
	if cfg.Items.PurgeInterval == 0 {
		cfg.Items.PurgeInterval = DefaultPurgeInterval
	}
	if cfg.Items.PurgeBatch == 0 {
		cfg.Items.PurgeBatch = DefaultPurgeBatch
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
