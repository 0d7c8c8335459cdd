package config

import "time"

// Config is the root configuration structure for the Lentera gateway.
// It contains all configuration sections: the HTTP server, the upstream
// services the gateway fronts, endpoint descriptors, telemetry, auditing,
// the local order store, and client-facing protections.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and connection limits.
	Server ServerConfig `yaml:"server"`

	// Upstreams contains configuration for every service the gateway
	// forwards to. Keys are upstream names referenced by endpoint
	// descriptors (e.g., "backend", "shipping_v1", "payment").
	Upstreams map[string]UpstreamConfig `yaml:"upstreams"`

	// Endpoints selects the endpoint descriptor source and watch mode.
	Endpoints EndpointsConfig `yaml:"endpoints"`

	// Telemetry contains observability configuration: logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Audit configures the request audit trail.
	Audit AuditConfig `yaml:"audit"`

	// Orders configures the gateway-local order store.
	Orders OrdersConfig `yaml:"orders"`

	// RateLimit configures per-client request throttling.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// CORS configures cross-origin access for browser dashboards.
	CORS CORSConfig `yaml:"cors"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8980", "0.0.0.0:8980").
	// Default: "127.0.0.1:8980"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Must exceed the slowest upstream timeout or long shipping
	// quotes get cut off mid-response. Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on a
	// kept-alive connection. Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers. Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// UpstreamConfig contains configuration for a single upstream service.
type UpstreamConfig struct {
	// BaseURL is the root URL outbound paths are joined onto.
	BaseURL string `yaml:"base_url"`

	// Auth selects the credential convention: "none", "bearer" (relay the
	// caller's Authorization header), or "header_key" (static API key in a
	// named header). Default: "none"
	Auth string `yaml:"auth"`

	// HeaderName is the API key header for header_key upstreams
	// (e.g., "key" for the shipping provider).
	HeaderName string `yaml:"header_name"`

	// APIKey is the static credential for header_key upstreams.
	// Prefer setting it via environment variable over the config file.
	APIKey string `yaml:"api_key"`

	// HMACSecret, when set, signs every outbound request with
	// X-API-Timestamp and X-API-Hash headers.
	HMACSecret string `yaml:"hmac_secret"`

	// Timeout bounds each call to this upstream unless the endpoint
	// descriptor overrides it. Default: 15s
	Timeout time.Duration `yaml:"timeout"`

	// MaxIdleConns and MaxIdleConnsPerHost tune the pooled transport.
	// Defaults: 100 and 10.
	MaxIdleConns        int `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`
}

// EndpointsConfig selects where endpoint descriptors come from.
type EndpointsConfig struct {
	// File is the path to a YAML descriptor file. Empty means the
	// compiled-in default endpoint set.
	File string `yaml:"file"`

	// Watch enables hot reload of the descriptor file on change.
	// Only meaningful when File is set. Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce coalesces rapid file events into one reload.
	// Default: 500ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// LogLevel sets the minimum level: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the handler: "json" or "text". Default: "json"
	LogFormat string `yaml:"log_format"`

	// MetricsEnabled controls the Prometheus endpoint. Default: true
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// MetricsPath is the scrape path. Default: "/metrics"
	MetricsPath string `yaml:"metrics_path"`
}

// AuditConfig contains configuration for the request audit trail.
type AuditConfig struct {
	// Enabled controls whether proxied requests are recorded. Default: true
	Enabled bool `yaml:"enabled"`

	// DatabasePath is the SQLite file holding audit records.
	// Default: "./data/audit.db"
	DatabasePath string `yaml:"database_path"`

	// BufferSize is the in-memory queue between the request path and the
	// writer goroutine. Default: 1024
	BufferSize int `yaml:"buffer_size"`

	// RetentionDays is how long audit records are kept. Zero disables
	// pruning. Default: 90
	RetentionDays int `yaml:"retention_days"`

	// RetentionSchedule is the cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 03:00)
	RetentionSchedule string `yaml:"retention_schedule"`
}

// OrdersConfig contains configuration for the gateway-local order store.
type OrdersConfig struct {
	// Enabled controls whether the local order endpoints are mounted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// DatabasePath is the SQLite file holding draft orders.
	// Default: "./data/orders.db"
	DatabasePath string `yaml:"database_path"`
}

// RateLimitConfig contains configuration for per-client throttling.
type RateLimitConfig struct {
	// Enabled controls whether throttling is applied. Default: true
	Enabled bool `yaml:"enabled"`

	// RequestsPerSecond is the sustained rate per client IP. Default: 25
	RequestsPerSecond float64 `yaml:"requests_per_second"`

	// Burst is the instantaneous allowance per client IP. Default: 50
	Burst int `yaml:"burst"`
}

// CORSConfig contains cross-origin access configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted. Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists allowed origins; ["*"] allows all.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists allowed HTTP methods.
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists allowed request headers.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the preflight cache lifetime in seconds. Default: 3600
	MaxAge int `yaml:"max_age"`
}
