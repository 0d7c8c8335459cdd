package upstream

import (
	"fmt"
	"time"
)

// ConnectionError represents a network-level failure reaching an upstream:
// DNS resolution, connection refused, TLS handshake. The cause is logged
// server-side only and never shown to the client.
type ConnectionError struct {
	// Upstream is the name of the upstream that could not be reached.
	Upstream string

	// Cause is the underlying transport error.
	Cause error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("upstream %q connection failed: %v", e.Upstream, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents an upstream call that exceeded its deadline.
type TimeoutError struct {
	// Upstream is the name of the upstream where the timeout occurred.
	Upstream string

	// Timeout is the configured bound that was exceeded.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %q request timeout after %s", e.Upstream, e.Timeout)
}

// ConfigError represents missing or invalid upstream configuration detected
// before any network call is attempted.
type ConfigError struct {
	// Upstream is the name of the misconfigured upstream.
	Upstream string

	// Field is the configuration field that is missing or invalid.
	Field string

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("upstream %q configuration error for field %q: %s",
		e.Upstream, e.Field, e.Message)
}
