package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides overrides config values with environment variables if
// set. Invalid values fail fast.
func applyEnvOverrides(cfg *Config) error {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Store.DSN = dsn
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		cfg.Store.Driver = driver
	}
	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTO_MIGRATE %q: %w", v, err)
		}
		cfg.Store.AutoMigrate = b
	}

	if address := os.Getenv("HTTP_ADDRESS"); address != "" {
		cfg.HTTP.Address = address
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.HTTP.CORSOrigins = splitList(origins)
	}
	if err := envDuration("REQUEST_TIMEOUT", &cfg.HTTP.RequestTimeout); err != nil {
		return err
	}

	if v := os.Getenv("TRUST_PROXY_HEADERS"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRUST_PROXY_HEADERS %q: %w", v, err)
		}
		cfg.Auth.TrustProxyHeaders = b
	}

	if mode := os.Getenv("TLS_MODE"); mode != "" {
		cfg.TLS.Mode = mode
	}
	if socket := os.Getenv("SPIFFE_ENDPOINT_SOCKET"); socket != "" {
		cfg.TLS.WorkloadSocket = socket
	}
	if id := os.Getenv("ALLOWED_PROXY_ID"); id != "" {
		cfg.TLS.AllowedProxyID = id
	}
	if td := os.Getenv("ALLOWED_PROXY_TRUST_DOMAIN"); td != "" {
		cfg.TLS.AllowedProxyTrustDomain = td
	}

	if err := envDuration("UNDO_WINDOW", &cfg.Items.UndoWindow); err != nil {
		return err
	}
	if err := envDuration("PURGE_INTERVAL", &cfg.Items.PurgeInterval); err != nil {
		return err
	}
	if v := os.Getenv("PURGE_BATCH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PURGE_BATCH %q: %w", v, err)
		}
		cfg.Items.PurgeBatch = n
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	return nil
}

func envDuration(name string, dst *time.Duration) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	*dst = d
	return nil
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseBool accepts "true", "1", "yes", "on" and "false", "0", "no", "off".
func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", value)
	}
}
