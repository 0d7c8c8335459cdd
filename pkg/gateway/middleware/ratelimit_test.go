package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lentera-hq/gateway/pkg/gateway/types"
)

func TestRateLimitMiddleware(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("requests beyond the burst are rejected", func(t *testing.T) {
		limited := 0
		rl := NewRateLimiter(&RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 1,
			Burst:             2,
			OnLimited:         func() { limited++ },
		})
		handler := rl.Middleware(okHandler)

		statuses := make([]int, 0, 3)
		for range 3 {
			req := httptest.NewRequest("GET", "/api/admin/order", nil)
			req.RemoteAddr = "10.0.0.1:50000"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			statuses = append(statuses, rec.Code)
		}

		if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
			t.Errorf("burst requests rejected: %v", statuses)
		}
		if statuses[2] != http.StatusTooManyRequests {
			t.Errorf("third request = %d, want 429", statuses[2])
		}
		if limited != 1 {
			t.Errorf("OnLimited called %d times, want 1", limited)
		}
	})

	t.Run("rejection body is an envelope", func(t *testing.T) {
		rl := NewRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1})
		handler := rl.Middleware(okHandler)

		for range 2 {
			req := httptest.NewRequest("GET", "/api/admin/order", nil)
			req.RemoteAddr = "10.0.0.2:50000"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code == http.StatusTooManyRequests {
				var env types.Envelope
				if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
					t.Fatalf("429 body is not an envelope: %v", err)
				}
				if env.Success {
					t.Errorf("env = %+v", env)
				}
			}
		}
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		rl := NewRateLimiter(&RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1})
		handler := rl.Middleware(okHandler)

		first := httptest.NewRequest("GET", "/", nil)
		first.RemoteAddr = "10.0.0.3:50000"
		firstRec := httptest.NewRecorder()
		handler.ServeHTTP(firstRec, first)

		second := httptest.NewRequest("GET", "/", nil)
		second.RemoteAddr = "10.0.0.4:50000"
		secondRec := httptest.NewRecorder()
		handler.ServeHTTP(secondRec, second)

		if firstRec.Code != http.StatusOK || secondRec.Code != http.StatusOK {
			t.Errorf("independent clients throttled together: %d, %d", firstRec.Code, secondRec.Code)
		}
	})

	t.Run("disabled limiter passes everything", func(t *testing.T) {
		rl := NewRateLimiter(&RateLimitConfig{Enabled: false})
		handler := rl.Middleware(okHandler)

		for range 10 {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = "10.0.0.5:50000"
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("disabled limiter rejected a request: %d", rec.Code)
			}
		}
	})
}
