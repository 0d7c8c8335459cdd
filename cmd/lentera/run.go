package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"lentera-hq/gateway/pkg/cli"
	"lentera-hq/gateway/pkg/config"
	"lentera-hq/gateway/pkg/server"
	"lentera-hq/gateway/pkg/telemetry/logging"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Lentera gateway server",
	Long: `Start the Lentera gateway server with the specified configuration.

The server listens on the configured address and forwards dashboard requests
to the configured upstream services, normalizing every response into the
gateway envelope.

Examples:
  # Start with default config
  lentera run

  # Start with custom config
  lentera run --config /etc/lentera/config.yaml

  # Override listen address
  lentera run --listen 0.0.0.0:8980

  # Validate config without starting server
  lentera run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Load configuration
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.LogLevel = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.LogLevel = "debug"
	}

	// Initialize logging based on config. Redaction always stays on:
	// access logs see bearer tokens, phone numbers and payment payloads.
	if _, err := logging.Setup(logging.Config{
		Level:         cfg.Telemetry.LogLevel,
		Format:        cfg.Telemetry.LogFormat,
		RedactSecrets: true,
	}); err != nil {
		return cli.NewConfigError("telemetry", fmt.Sprintf("failed to set up logging: %v", err))
	}

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	// Print startup banner
	printBanner(cfg)

	srv, err := server.NewServer(cfg, server.BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildTime: BuildDate,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.MetricsEnabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.MetricsPath)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a shutdown signal, context cancellation or a
	// listener error.
	if err := srv.Start(cli.SetupSignalHandler()); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Lentera Gateway v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	slog.Debug("upstreams configured", "count", len(cfg.Upstreams))
	if cfg.Endpoints.File != "" {
		slog.Debug("endpoint descriptors", "path", cfg.Endpoints.File, "watch", cfg.Endpoints.Watch)
	} else {
		slog.Debug("endpoint descriptors", "source", "built-in")
	}
	if cfg.Audit.Enabled {
		slog.Debug("audit enabled", "path", cfg.Audit.DatabasePath)
	}
	if cfg.Orders.Enabled {
		slog.Debug("local order store enabled", "path", cfg.Orders.DatabasePath)
	}
}
