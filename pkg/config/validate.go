package config

import (
	"fmt"
	"net"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateUpstreams(cfg.Upstreams)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateAudit(&cfg.Audit)...)
	errs = append(errs, validateRateLimit(&cfg.RateLimit)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(s *ServerConfig) []FieldError {
	var errs []FieldError

	if s.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, _, err := net.SplitHostPort(s.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid host:port address: %v", err),
		})
	}

	if s.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "must not be negative",
		})
	}
	if s.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "must not be negative",
		})
	}
	if s.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateUpstreams(upstreams map[string]UpstreamConfig) []FieldError {
	var errs []FieldError

	if len(upstreams) == 0 {
		errs = append(errs, FieldError{
			Field:   "upstreams",
			Message: "at least one upstream must be configured",
		})
		return errs
	}

	for name, u := range upstreams {
		field := func(f string) string { return fmt.Sprintf("upstreams.%s.%s", name, f) }

		if u.BaseURL == "" {
			errs = append(errs, FieldError{
				Field:   field("base_url"),
				Message: "base URL is required",
			})
		} else if !strings.HasPrefix(u.BaseURL, "http://") && !strings.HasPrefix(u.BaseURL, "https://") {
			errs = append(errs, FieldError{
				Field:   field("base_url"),
				Message: "base URL must start with http:// or https://",
			})
		}

		switch u.Auth {
		case AuthNone, AuthBearer:
		case AuthHeaderKey:
			if u.HeaderName == "" {
				errs = append(errs, FieldError{
					Field:   field("header_name"),
					Message: "header name is required for header_key auth",
				})
			}
			if u.APIKey == "" {
				errs = append(errs, FieldError{
					Field:   field("api_key"),
					Message: "API key is required for header_key auth (set it via environment)",
				})
			}
		default:
			errs = append(errs, FieldError{
				Field:   field("auth"),
				Message: fmt.Sprintf("unknown auth scheme %q (expected none, bearer, or header_key)", u.Auth),
			})
		}

		if u.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   field("timeout"),
				Message: "must not be negative",
			})
		}
	}

	return errs
}

func validateTelemetry(t *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch t.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.log_level",
			Message: fmt.Sprintf("unknown log level %q (expected debug, info, warn, or error)", t.LogLevel),
		})
	}

	switch t.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.log_format",
			Message: fmt.Sprintf("unknown log format %q (expected json or text)", t.LogFormat),
		})
	}

	if t.MetricsEnabled && !strings.HasPrefix(t.MetricsPath, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics_path",
			Message: "must start with /",
		})
	}

	return errs
}

func validateAudit(a *AuditConfig) []FieldError {
	var errs []FieldError

	if !a.Enabled {
		return nil
	}
	if a.DatabasePath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.database_path",
			Message: "database path is required when audit is enabled",
		})
	}
	if a.BufferSize < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.buffer_size",
			Message: "must be at least 1",
		})
	}
	if a.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention_days",
			Message: "must not be negative",
		})
	}

	return errs
}

func validateRateLimit(r *RateLimitConfig) []FieldError {
	var errs []FieldError

	if !r.Enabled {
		return nil
	}
	if r.RequestsPerSecond <= 0 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.requests_per_second",
			Message: "must be positive",
		})
	}
	if r.Burst < 1 {
		errs = append(errs, FieldError{
			Field:   "rate_limit.burst",
			Message: "must be at least 1",
		})
	}

	return errs
}
