package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lentera-hq/gateway/pkg/gateway/types"
)

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("panic becomes a 500 envelope", func(t *testing.T) {
		handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("descriptor misconfigured: nil upstream")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/payment", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}

		var env types.Envelope
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("body is not an envelope: %v", err)
		}
		if env.Success || env.Code != types.CodeInternalError {
			t.Errorf("env = %+v", env)
		}
		if strings.Contains(rec.Body.String(), "misconfigured") {
			t.Errorf("panic detail leaked to client: %s", rec.Body.String())
		}
	})

	t.Run("normal requests pass through", func(t *testing.T) {
		handler := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusAccepted)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

		if rec.Code != http.StatusAccepted {
			t.Errorf("status = %d", rec.Code)
		}
	})
}
