package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "lentera"
	subsystem = "gateway"

	// maxEndpointCardinality bounds the endpoint label. Endpoints come
	// from the descriptor file, but a reloaded file could churn names
	// indefinitely over the life of the process.
	maxEndpointCardinality = 1000
)

// Collector records Prometheus metrics for gateway traffic. It satisfies
// the pipeline's observer contract: one observation per proxied request,
// plus dedicated counters for sanitized upstream leaks and fail-silent
// fallbacks, which are invisible in the request counter alone (both
// surface to the client as ordinary responses).
type Collector struct {
	registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	upstreamLatency    *prometheus.HistogramVec
	sanitizedTotal     *prometheus.CounterVec
	failSilentTotal    *prometheus.CounterVec
	rateLimitedTotal   prometheus.Counter
	cardinalityLimiter *cardinalityLimiter
}

// NewCollector creates a collector registered against its own registry.
// If registry is nil a fresh one is created, so gateway metrics never
// mix with the global default registry.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry:           registry,
		cardinalityLimiter: newCardinalityLimiter(maxEndpointCardinality),
	}

	c.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total proxied requests by endpoint, upstream, envelope code and HTTP status.",
		},
		[]string{"endpoint", "upstream", "code", "status"},
	)

	c.upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_latency_seconds",
			Help:      "End-to-end latency of proxied requests, including upstream round trip.",
			// Upstream calls are remote HTTP APIs; the shipping rate
			// endpoints routinely take several seconds.
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		},
		[]string{"endpoint", "upstream"},
	)

	c.sanitizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sanitized_responses_total",
			Help:      "Upstream responses rewritten because they leaked internal error detail.",
		},
		[]string{"endpoint", "upstream"},
	)

	c.failSilentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fail_silent_total",
			Help:      "Upstream failures converted to empty success responses on fail-silent endpoints.",
		},
		[]string{"endpoint"},
	)

	c.rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		},
	)

	registry.MustRegister(
		c.requestsTotal,
		c.upstreamLatency,
		c.sanitizedTotal,
		c.failSilentTotal,
		c.rateLimitedTotal,
	)

	return c
}

// ObserveRequest records a completed proxied request.
func (c *Collector) ObserveRequest(endpoint, upstreamName, code string, status int, latency time.Duration) {
	endpoint = c.boundEndpoint(endpoint)
	c.requestsTotal.WithLabelValues(endpoint, upstreamName, code, strconv.Itoa(status)).Inc()
	c.upstreamLatency.WithLabelValues(endpoint, upstreamName).Observe(latency.Seconds())
}

// ObserveSanitized records an upstream response that was rewritten
// because it leaked stack traces, SQL errors or file paths.
func (c *Collector) ObserveSanitized(endpoint, upstreamName string) {
	c.sanitizedTotal.WithLabelValues(c.boundEndpoint(endpoint), upstreamName).Inc()
}

// ObserveFailSilent records an upstream failure that was masked as an
// empty success response.
func (c *Collector) ObserveFailSilent(endpoint string) {
	c.failSilentTotal.WithLabelValues(c.boundEndpoint(endpoint)).Inc()
}

// ObserveRateLimited records a request rejected by the rate limiter.
func (c *Collector) ObserveRateLimited() {
	c.rateLimitedTotal.Inc()
}

// Registry returns the Prometheus registry backing this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) boundEndpoint(endpoint string) string {
	if !c.cardinalityLimiter.allow(endpoint) {
		return "other"
	}
	return endpoint
}

// cardinalityLimiter caps the number of distinct values recorded for a
// label, aggregating the overflow so a churning descriptor file cannot
// grow the metric space without bound.
type cardinalityLimiter struct {
	max     int
	current map[string]struct{}
	mu      sync.RWMutex
}

func newCardinalityLimiter(max int) *cardinalityLimiter {
	return &cardinalityLimiter{
		max:     max,
		current: make(map[string]struct{}),
	}
}

func (cl *cardinalityLimiter) allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.max {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}
