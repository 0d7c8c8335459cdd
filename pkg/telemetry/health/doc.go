// Package health provides liveness and readiness probes for the gateway.
//
// # Endpoints
//
//   - /health: Liveness probe - indicates the process is running
//   - /ready: Readiness probe - indicates the gateway can serve traffic
//   - /version: Build information - version, commit, build time
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	checker.RegisterCheck("audit", func(ctx context.Context) error {
//	    return auditStore.Ping(ctx)
//	})
//	checker.RegisterCheck("descriptors", func(ctx context.Context) error {
//	    if registry.Len() == 0 {
//	        return errors.New("no endpoint descriptors loaded")
//	    }
//	    return nil
//	})
//
//	mux.HandleFunc("/health", checker.LivenessHandler())
//	mux.HandleFunc("/ready", checker.ReadinessHandler())
//	mux.HandleFunc("/version", health.VersionHandler("1.0.0", commit, buildTime))
//
// # Liveness vs readiness
//
// Liveness only confirms the process is alive and never runs component
// checks, so orchestrators restart the pod only on real hangs.
// Readiness runs every registered check concurrently and answers 503
// while any local dependency (audit store, order store, descriptor
// registry) is unhealthy. Upstream APIs are intentionally excluded from
// readiness: the gateway degrades per-endpoint when an upstream flaps,
// and pulling the whole process out of rotation would make that worse.
package health
