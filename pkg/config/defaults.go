package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8980"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Upstream defaults
	DefaultUpstreamTimeout     = 15 * time.Second
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 10

	// Endpoint descriptor defaults
	DefaultWatchDebounce = 500 * time.Millisecond

	// Telemetry defaults
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMetricsPath = "/metrics"

	// Audit defaults
	DefaultAuditDatabasePath  = "./data/audit.db"
	DefaultAuditBufferSize    = 1024
	DefaultAuditRetentionDays = 90
	DefaultAuditRetentionCron = "0 3 * * *"
	DefaultOrdersDatabasePath = "./data/orders.db"
	DefaultRateLimitPerSecond = 25.0
	DefaultRateLimitBurst     = 50
	DefaultCORSMaxAge         = 3600 // 1 hour
)

// Auth scheme names accepted in upstream configuration.
const (
	AuthNone      = "none"
	AuthBearer    = "bearer"
	AuthHeaderKey = "header_key"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
//
// Boolean sections that default to enabled (audit, orders, metrics, rate
// limiting, CORS) are handled by the loader, which unmarshals over a
// pre-enabled base config so an explicit "enabled: false" survives.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	// Upstream defaults - applied to each upstream
	for name, u := range cfg.Upstreams {
		if u.Auth == "" {
			u.Auth = AuthNone
		}
		if u.Timeout == 0 {
			u.Timeout = DefaultUpstreamTimeout
		}
		if u.MaxIdleConns == 0 {
			u.MaxIdleConns = DefaultMaxIdleConns
		}
		if u.MaxIdleConnsPerHost == 0 {
			u.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
		}
		cfg.Upstreams[name] = u
	}

	// Endpoint descriptor defaults
	if cfg.Endpoints.WatchDebounce == 0 {
		cfg.Endpoints.WatchDebounce = DefaultWatchDebounce
	}

	// Telemetry defaults
	if cfg.Telemetry.LogLevel == "" {
		cfg.Telemetry.LogLevel = DefaultLogLevel
	}
	if cfg.Telemetry.LogFormat == "" {
		cfg.Telemetry.LogFormat = DefaultLogFormat
	}
	if cfg.Telemetry.MetricsPath == "" {
		cfg.Telemetry.MetricsPath = DefaultMetricsPath
	}

	// Audit defaults
	if cfg.Audit.DatabasePath == "" {
		cfg.Audit.DatabasePath = DefaultAuditDatabasePath
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = DefaultAuditBufferSize
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = DefaultAuditRetentionDays
	}
	if cfg.Audit.RetentionSchedule == "" {
		cfg.Audit.RetentionSchedule = DefaultAuditRetentionCron
	}

	// Order store defaults
	if cfg.Orders.DatabasePath == "" {
		cfg.Orders.DatabasePath = DefaultOrdersDatabasePath
	}

	// Rate limit defaults
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = DefaultRateLimitPerSecond
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = DefaultRateLimitBurst
	}

	// CORS defaults
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
	if len(cfg.CORS.AllowedMethods) == 0 {
		cfg.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(cfg.CORS.AllowedHeaders) == 0 {
		cfg.CORS.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = DefaultCORSMaxAge
	}
}

// newBase returns the config every load starts from: zero values except
// the sections that default to enabled.
func newBase() *Config {
	return &Config{
		Telemetry: TelemetryConfig{MetricsEnabled: true},
		Audit:     AuditConfig{Enabled: true},
		Orders:    OrdersConfig{Enabled: true},
		RateLimit: RateLimitConfig{Enabled: true},
		CORS:      CORSConfig{Enabled: true},
	}
}

// NewDefault returns a fully defaulted configuration with no upstreams.
// Used by `lentera config init` style tooling and tests.
func NewDefault() *Config {
	cfg := newBase()
	ApplyDefaults(cfg)
	return cfg
}
