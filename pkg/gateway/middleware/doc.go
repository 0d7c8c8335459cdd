// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// Middleware functions are chained outermost-first:
//
//	handler = Recovery(RequestID(Logging(CORS(RateLimit(handler)))))
//
//   - RecoveryMiddleware: recover from panics, respond with a generic envelope
//   - RequestIDMiddleware: generate and propagate X-Request-ID
//   - LoggingMiddleware: structured request/response logs via log/slog
//   - CORSMiddleware: Cross-Origin Resource Sharing headers and preflight
//   - RateLimitMiddleware: per-client token bucket
//
// Every middleware that writes a response body writes the same envelope
// shape the handlers do, so clients see one format on every path.
package middleware
