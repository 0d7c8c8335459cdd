package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"lentera-hq/gateway/pkg/gateway/types"
)

// RecoveryMiddleware recovers from panics in HTTP handlers and returns a
// 500 response in the standard envelope format. The panic value and stack
// trace are logged but never exposed to clients.
//
// Example usage:
//
//	handler = RecoveryMiddleware(handler)
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.ErrorContext(r.Context(), "panic in handler",
					"error", err,
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				env := types.Fail(types.CodeInternalError, "An internal system error occurred.")

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(env)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
