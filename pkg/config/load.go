package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"lentera-hq/gateway/pkg/upstream"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Unmarshal over the pre-enabled base so absent sections keep their
	// enabled-by-default state while an explicit false is honored.
	cfg := newBase()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention LENTERA_SECTION_FIELD (e.g., LENTERA_SERVER_LISTEN_ADDRESS);
// upstream credentials use LENTERA_UPSTREAM_<NAME>_<FIELD>. Environment
// variables always take precedence over file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("LENTERA_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("LENTERA_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("LENTERA_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("LENTERA_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}

	// Upstream overrides; secrets normally arrive this way rather than
	// sitting in the config file.
	for name, u := range cfg.Upstreams {
		prefix := "LENTERA_UPSTREAM_" + strings.ToUpper(name) + "_"
		if val := os.Getenv(prefix + "BASE_URL"); val != "" {
			u.BaseURL = val
		}
		if val := os.Getenv(prefix + "API_KEY"); val != "" {
			u.APIKey = val
		}
		if val := os.Getenv(prefix + "HMAC_SECRET"); val != "" {
			u.HMACSecret = val
		}
		if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
			if d, err := time.ParseDuration(val); err == nil {
				u.Timeout = d
			}
		}
		cfg.Upstreams[name] = u
	}

	// Endpoint descriptor overrides
	if val := os.Getenv("LENTERA_ENDPOINTS_FILE"); val != "" {
		cfg.Endpoints.File = val
	}
	if val := os.Getenv("LENTERA_ENDPOINTS_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Endpoints.Watch = b
		}
	}

	// Telemetry overrides
	if val := os.Getenv("LENTERA_TELEMETRY_LOG_LEVEL"); val != "" {
		cfg.Telemetry.LogLevel = val
	}
	if val := os.Getenv("LENTERA_TELEMETRY_LOG_FORMAT"); val != "" {
		cfg.Telemetry.LogFormat = val
	}
	if val := os.Getenv("LENTERA_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.MetricsEnabled = b
		}
	}

	// Audit overrides
	if val := os.Getenv("LENTERA_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("LENTERA_AUDIT_DATABASE_PATH"); val != "" {
		cfg.Audit.DatabasePath = val
	}
	if val := os.Getenv("LENTERA_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.RetentionDays = i
		}
	}

	// Order store overrides
	if val := os.Getenv("LENTERA_ORDERS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Orders.Enabled = b
		}
	}
	if val := os.Getenv("LENTERA_ORDERS_DATABASE_PATH"); val != "" {
		cfg.Orders.DatabasePath = val
	}

	// Rate limit overrides
	if val := os.Getenv("LENTERA_RATE_LIMIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RateLimit.Enabled = b
		}
	}
	if val := os.Getenv("LENTERA_RATE_LIMIT_REQUESTS_PER_SECOND"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.RateLimit.RequestsPerSecond = f
		}
	}
}

// UpstreamDefinitions converts the configured upstreams into registry
// definitions, translating the auth scheme names.
func (c *Config) UpstreamDefinitions() []*upstream.Definition {
	defs := make([]*upstream.Definition, 0, len(c.Upstreams))
	for name, u := range c.Upstreams {
		def := &upstream.Definition{
			Name:                name,
			BaseURL:             u.BaseURL,
			HeaderName:          u.HeaderName,
			APIKey:              u.APIKey,
			HMACSecret:          u.HMACSecret,
			Timeout:             u.Timeout,
			MaxIdleConns:        u.MaxIdleConns,
			MaxIdleConnsPerHost: u.MaxIdleConnsPerHost,
		}
		switch u.Auth {
		case AuthBearer:
			def.Scheme = upstream.AuthBearerPassthrough
		case AuthHeaderKey:
			def.Scheme = upstream.AuthHeaderKey
		default:
			def.Scheme = upstream.AuthNone
		}
		defs = append(defs, def)
	}
	return defs
}
