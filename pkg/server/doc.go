// Package server ties the gateway components together and manages the
// HTTP server lifecycle.
//
// The server mounts three kinds of routes on one chi router:
//
//   - Proxied endpoints, generated from the descriptor registry. These
//     live behind an atomically swappable sub-router so the descriptor
//     file can be hot-reloaded without dropping in-flight requests.
//   - Local order endpoints, answered from the SQLite order store.
//   - Operational endpoints: /health, /ready, /version and the
//     Prometheus scrape path.
//
// Every route runs through the middleware chain
// recovery → request id → logging → CORS → rate limit.
//
// # Basic usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides(path)
//	srv, err := server.NewServer(cfg, server.BuildInfo{Version: "1.0.0"})
//	err = srv.Start(ctx) // blocks until signal or ctx cancellation
//
// Start blocks until SIGINT/SIGTERM or context cancellation, then shuts
// down gracefully: the HTTP server drains within the configured timeout,
// the audit recorder flushes its buffer, and the stores close.
package server
