// Package telemetry groups the observability components of the gateway.
//
// # Components
//
//   - logging: structured slog setup with credential redaction
//   - metrics: Prometheus counters and histograms for proxied traffic
//   - health: liveness and readiness probes
//
// # Usage
//
//	logger, err := logging.Setup(logging.Config{
//	    Level:         cfg.Telemetry.LogLevel,
//	    Format:        cfg.Telemetry.LogFormat,
//	    RedactSecrets: true,
//	})
//
//	collector := metrics.NewCollector(nil)
//	exec := gateway.NewExecutor(upstreams, nil, collector, recorder)
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("audit", auditStore.Ping)
//
// The subpackages are independent; the server wires them together.
package telemetry
