package upstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Result is the outcome of a completed upstream call. A non-2xx status is
// not an error at this layer: the status and raw body text flow onward to
// the response normalizer and error sanitizer, which decide what (if
// anything) the client gets to see.
type Result struct {
	// StatusCode is the upstream HTTP status.
	StatusCode int

	// Header is the upstream response header set.
	Header http.Header

	// Body is the raw response body. It may be JSON, an HTML error page,
	// or garbage; callers must not assume valid JSON.
	Body []byte

	// Latency is the wall-clock duration of the call.
	Latency time.Duration
}

// OK reports whether the upstream answered with a 2xx status.
func (r *Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client executes HTTP calls against one upstream with a pooled transport.
// Exactly one attempt is made per invocation; there is no retry loop.
type Client struct {
	def        *Definition
	httpClient *http.Client

	// maxBodyBytes caps how much of an upstream body is read.
	maxBodyBytes int64
}

// DefaultMaxBodyBytes caps upstream response bodies at 10 MiB.
const DefaultMaxBodyBytes = 10 << 20

// NewClient creates a caller for the given upstream definition.
func NewClient(def *Definition) *Client {
	maxIdle := def.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = 100
	}
	maxIdlePerHost := def.MaxIdleConnsPerHost
	if maxIdlePerHost == 0 {
		maxIdlePerHost = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        maxIdle,
		MaxIdleConnsPerHost: maxIdlePerHost,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		def: def,
		// Per-call deadlines come from the request context in Do; a client
		// level timeout would silently cap descriptor overrides.
		httpClient: &http.Client{Transport: transport},
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Do executes the request with the upstream's timeout applied via context
// cancellation. A positive timeout overrides the definition's default for
// this call only. Network failures map to ConnectionError, deadline
// overruns to TimeoutError; both are logged here with full detail because
// the sanitized client-facing message will not carry it.
func (c *Client) Do(ctx context.Context, req *http.Request, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = c.def.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		latency := time.Since(start)

		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.WarnContext(ctx, "upstream call timed out",
				"upstream", c.def.Name,
				"method", req.Method,
				"url", req.URL.Redacted(),
				"timeout", timeout.String(),
				"latency_ms", latency.Milliseconds(),
			)
			return nil, &TimeoutError{Upstream: c.def.Name, Timeout: timeout}
		}

		slog.ErrorContext(ctx, "upstream connection failed",
			"upstream", c.def.Name,
			"method", req.Method,
			"url", req.URL.Redacted(),
			"error", err,
			"latency_ms", latency.Milliseconds(),
		)
		return nil, &ConnectionError{Upstream: c.def.Name, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	latency := time.Since(start)
	if err != nil {
		// Body read failures after a successful connect are still
		// network-level from the client's point of view.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &TimeoutError{Upstream: c.def.Name, Timeout: timeout}
		}
		slog.ErrorContext(ctx, "failed to read upstream body",
			"upstream", c.def.Name,
			"status", resp.StatusCode,
			"error", err,
		)
		return nil, &ConnectionError{Upstream: c.def.Name, Cause: err}
	}

	slog.DebugContext(ctx, "upstream call completed",
		"upstream", c.def.Name,
		"method", req.Method,
		"status", resp.StatusCode,
		"bytes", len(body),
		"latency_ms", latency.Milliseconds(),
	)

	return &Result{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Latency:    latency,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
