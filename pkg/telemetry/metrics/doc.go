// Package metrics provides Prometheus metrics for proxied gateway traffic.
//
// # Overview
//
// The collector records one observation per proxied request plus two
// counters for behavior that is deliberately invisible to clients:
// sanitized responses (upstream leaked internal detail and the gateway
// rewrote it) and fail-silent fallbacks (upstream failed and the gateway
// returned an empty success instead). Without these counters such events
// look like ordinary 200/500 responses in the request counter.
//
// # Metrics
//
//	lentera_gateway_requests_total{endpoint,upstream,code,status}
//	lentera_gateway_upstream_latency_seconds{endpoint,upstream}
//	lentera_gateway_sanitized_responses_total{endpoint,upstream}
//	lentera_gateway_fail_silent_total{endpoint}
//	lentera_gateway_rate_limited_total
//
// # Usage
//
//	collector := metrics.NewCollector(nil)
//	exec := gateway.NewExecutor(upstreams, nil, collector, recorder)
//	mux.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// The endpoint label is bounded: once the limiter has seen its maximum
// number of distinct endpoint names, further names aggregate into
// "other". Endpoint names come from the descriptor file, so this only
// matters when hot reloads churn names over a long process lifetime.
package metrics
