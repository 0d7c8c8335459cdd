package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"lentera-hq/gateway/pkg/gateway/types"
)

// RateLimitConfig contains configuration for the per-client rate limiter.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is applied.
	Enabled bool

	// RequestsPerSecond is the sustained rate allowed per client IP.
	RequestsPerSecond float64

	// Burst is the number of requests a client may send at once.
	Burst int

	// OnLimited, when set, is called once per rejected request.
	OnLimited func()
}

// DefaultRateLimitConfig returns a configuration generous enough for a
// dashboard user clicking around, but tight enough to absorb runaway
// frontend retry loops.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 25,
		Burst:             50,
	}
}

// clientLimiter pairs a token bucket with its last use, so idle entries
// can be evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	config  *RateLimitConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewRateLimiter creates a rate limiter and starts its eviction loop.
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		config:  config,
		clients: make(map[string]*clientLimiter),
	}
	go rl.evictLoop()
	return rl
}

// allow reports whether the client identified by ip may proceed.
func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.clients[ip]
	if !ok {
		entry = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst),
		}
		rl.clients[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// evictLoop drops client entries idle for more than three minutes.
func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-3 * time.Minute)
		rl.mu.Lock()
		for ip, entry := range rl.clients {
			if entry.lastSeen.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns the rate limiting middleware. Clients past their
// budget receive 429 with a standard failure envelope.
//
// Example usage:
//
//	handler = NewRateLimiter(DefaultRateLimitConfig()).Middleware(handler)
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.config.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if !rl.allow(ip) {
			if rl.config.OnLimited != nil {
				rl.config.OnLimited()
			}
			slog.WarnContext(r.Context(), "rate limit exceeded",
				"client_ip", ip,
				"path", r.URL.Path,
				"request_id", GetRequestID(r.Context()),
			)

			env := types.Fail(types.CodeClientError, "Too many requests. Please slow down and try again.")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(env)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
