// Package logging configures structured logging for the gateway.
//
// # Overview
//
// The logging package builds on Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Automatic redaction of credentials and customer PII
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{
//	    Level:         "info",
//	    Format:        "json",
//	    RedactSecrets: true,
//	})
//
//	slog.Info("request completed",
//	    "endpoint", "order-list",
//	    "authorization", "Bearer eyJhb...",  // Automatically redacted
//	    "duration_ms", 42,
//	)
//
// # Redaction
//
// The gateway forwards bearer tokens, shipping API keys and OTP phone
// numbers on almost every request. When RedactSecrets is enabled the
// handler scrubs these before writing:
//
//   - Bearer tokens: Bearer eyJhb... → Bearer ***
//   - API keys and HMAC secrets: api_key: abc123 → api_key: ***
//   - Emails: user@example.com → ***@example.com
//   - Phone numbers: +6281234567890 → ***
//
// Attributes whose key names a credential (token, secret, api_key,
// authorization) are replaced wholesale regardless of value shape.
package logging
