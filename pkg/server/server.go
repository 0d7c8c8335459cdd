package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"lentera-hq/gateway/pkg/audit"
	"lentera-hq/gateway/pkg/config"
	"lentera-hq/gateway/pkg/gateway"
	"lentera-hq/gateway/pkg/gateway/middleware"
	"lentera-hq/gateway/pkg/gateway/types"
	"lentera-hq/gateway/pkg/orders"
	"lentera-hq/gateway/pkg/telemetry/health"
	"lentera-hq/gateway/pkg/telemetry/metrics"
	"lentera-hq/gateway/pkg/upstream"
)

// BuildInfo carries version metadata for the /version endpoint.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server wires the gateway pipeline, local stores and telemetry into a
// single HTTP server with graceful shutdown.
type Server struct {
	cfg   *config.Config
	build BuildInfo

	httpServer *http.Server
	upstreams  *upstream.Registry
	executor   *gateway.Executor
	collector  *metrics.Collector
	checker    *health.Checker
	watcher    *config.DescriptorWatcher

	auditStorage  *audit.Storage
	auditRecorder *audit.Recorder
	auditPruner   *audit.Pruner
	orderStore    *orders.Store

	// proxy is the descriptor-generated sub-router, swapped atomically
	// on hot reload.
	proxy atomic.Pointer[chi.Mux]

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer builds a server from validated configuration. It opens the
// local stores and loads the initial descriptor set; it does not listen.
func NewServer(cfg *config.Config, build BuildInfo) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	s := &Server{
		cfg:          cfg,
		build:        build,
		checker:      health.New(5 * time.Second),
		shutdownChan: make(chan struct{}),
	}

	upstreams, err := upstream.NewRegistry(cfg.UpstreamDefinitions(), config.DefaultUpstreamTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream registry: %w", err)
	}
	s.upstreams = upstreams

	if cfg.Telemetry.MetricsEnabled {
		s.collector = metrics.NewCollector(nil)
	}

	if cfg.Audit.Enabled {
		storage, err := audit.NewStorage(&audit.StorageConfig{Path: cfg.Audit.DatabasePath})
		if err != nil {
			s.closeResources()
			return nil, fmt.Errorf("failed to open audit storage: %w", err)
		}
		s.auditStorage = storage
		s.auditRecorder = audit.NewRecorder(storage, &audit.RecorderConfig{
			BufferSize: cfg.Audit.BufferSize,
		})
		s.auditPruner = audit.NewPruner(storage, &audit.RetentionConfig{
			RetentionDays: cfg.Audit.RetentionDays,
			Schedule:      cfg.Audit.RetentionSchedule,
		})
		s.checker.RegisterCheck("audit", storage.Ping)
	}

	if cfg.Orders.Enabled {
		store, err := orders.NewStore(cfg.Orders.DatabasePath)
		if err != nil {
			s.closeResources()
			return nil, fmt.Errorf("failed to open order store: %w", err)
		}
		s.orderStore = store
		s.checker.RegisterCheck("orders", store.Ping)
	}

	// A typed nil must not become a non-nil interface value.
	var observer gateway.Observer
	if s.collector != nil {
		observer = s.collector
	}
	var recorder gateway.Recorder
	if s.auditRecorder != nil {
		recorder = s.auditRecorder
	}
	s.executor = gateway.NewExecutor(upstreams, nil, observer, recorder)

	if err := s.reloadDescriptors(); err != nil {
		s.closeResources()
		return nil, err
	}
	s.checker.RegisterCheck("descriptors", func(ctx context.Context) error {
		if router := s.proxy.Load(); router == nil {
			return errors.New("no endpoint descriptors loaded")
		}
		return nil
	})

	return s, nil
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.cfg.Server.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		IdleTimeout:    s.cfg.Server.IdleTimeout,
		MaxHeaderBytes: s.cfg.Server.MaxHeaderBytes,
	}

	if s.auditPruner != nil {
		if err := s.auditPruner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start audit retention: %w", err)
		}
	}

	if s.cfg.Endpoints.Watch && s.cfg.Endpoints.File != "" {
		watcher, err := config.NewDescriptorWatcher(
			s.cfg.Endpoints.File,
			s.cfg.Endpoints.WatchDebounce,
			slog.Default().With("component", "server.watcher"),
		)
		if err != nil {
			return fmt.Errorf("failed to watch descriptor file: %w", err)
		}
		s.watcher = watcher
		go func() {
			if err := watcher.Watch(ctx, s.reloadDescriptors); err != nil {
				slog.Error("descriptor watcher stopped", "error", err)
			}
		}()
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", s.cfg.Server.ListenAddress,
			"upstreams", len(s.cfg.Upstreams),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.Shutdown(context.Background())
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Shutdown drains the HTTP server, flushes the audit buffer and closes
// the local stores. Safe to call multiple times.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		slog.Info("initiating graceful shutdown", "timeout", s.cfg.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.closeResources()

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// closeResources releases everything NewServer opened. Order matters:
// the recorder flushes into audit storage, so it closes first.
func (s *Server) closeResources() {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.auditPruner != nil {
		s.auditPruner.Stop()
	}
	if s.auditRecorder != nil {
		s.auditRecorder.Close()
	}
	if s.auditStorage != nil {
		s.auditStorage.Close()
	}
	if s.orderStore != nil {
		s.orderStore.Close()
	}
	if s.upstreams != nil {
		s.upstreams.Close()
	}
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// reloadDescriptors loads the descriptor file and swaps the proxy
// sub-router. On failure the previous route set stays in service.
func (s *Server) reloadDescriptors() error {
	registry, err := gateway.LoadDescriptors(s.cfg.Endpoints.File)
	if err != nil {
		return fmt.Errorf("failed to load endpoint descriptors: %w", err)
	}

	router := chi.NewRouter()
	for _, d := range registry.All() {
		router.Method(d.Method, d.Path, s.executor.Handler(d))
	}
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		gateway.WriteJSON(w, http.StatusNotFound,
			types.Fail(types.CodeClientError, "endpoint not found"))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		gateway.WriteJSON(w, http.StatusMethodNotAllowed,
			types.Fail(types.CodeClientError, "method not allowed"))
	})

	s.proxy.Store(router)
	slog.Info("endpoint descriptors loaded", "count", len(registry.All()))
	return nil
}

// Handler builds the full router with the middleware chain applied.
// Exposed for tests.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	limitCfg := &middleware.RateLimitConfig{
		Enabled:           s.cfg.RateLimit.Enabled,
		RequestsPerSecond: s.cfg.RateLimit.RequestsPerSecond,
		Burst:             s.cfg.RateLimit.Burst,
	}
	if s.collector != nil {
		limitCfg.OnLimited = s.collector.ObserveRateLimited
	}
	rateLimiter := middleware.NewRateLimiter(limitCfg)

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.CORSMiddleware(s.corsConfig()))
	r.Use(rateLimiter.Middleware)

	r.Get("/health", s.checker.LivenessHandler())
	r.Get("/ready", s.checker.ReadinessHandler())
	r.Get("/version", health.VersionHandler(s.build.Version, s.build.Commit, s.build.BuildTime))

	if s.collector != nil {
		r.Handle(s.cfg.Telemetry.MetricsPath, s.collector.Handler())
	}

	if s.orderStore != nil {
		r.Route("/api/local/order", orders.NewHandler(s.orderStore).Mount)
	}

	// Descriptor-generated routes go through the swappable sub-router.
	// RoutePath is rewound the way chi's Mount does it, so the inner
	// router matches full endpoint paths.
	r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		rctx.RoutePath = "/" + rctx.URLParam("*")
		s.proxy.Load().ServeHTTP(w, req)
	}))

	return r
}

func (s *Server) corsConfig() *middleware.CORSConfig {
	cc := middleware.DefaultCORSConfig()
	cc.Enabled = s.cfg.CORS.Enabled
	if len(s.cfg.CORS.AllowedOrigins) > 0 {
		cc.AllowedOrigins = s.cfg.CORS.AllowedOrigins
	}
	if len(s.cfg.CORS.AllowedMethods) > 0 {
		cc.AllowedMethods = s.cfg.CORS.AllowedMethods
	}
	if len(s.cfg.CORS.AllowedHeaders) > 0 {
		cc.AllowedHeaders = s.cfg.CORS.AllowedHeaders
	}
	if s.cfg.CORS.MaxAge > 0 {
		cc.MaxAge = s.cfg.CORS.MaxAge
	}
	return cc
}
