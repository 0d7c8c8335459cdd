package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"lentera-hq/gateway/pkg/cli"
	"lentera-hq/gateway/pkg/config"
	"lentera-hq/gateway/pkg/gateway"
)

var validateFlags struct {
	endpoints string
	format    string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and endpoint descriptors",
	Long: `Check the configuration file and the endpoint descriptor set without
starting the server.

The validate command verifies:
  - The configuration file parses and passes field validation
  - Every upstream referenced by an endpoint descriptor is configured
  - The endpoint descriptor file (if any) parses and is internally consistent

Examples:
  # Validate the default config and its descriptor set
  lentera validate

  # Validate a specific descriptor file
  lentera validate --endpoints endpoints.yaml

  # Machine-readable summary
  lentera validate --format json`,
	RunE: validateSetup,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.endpoints, "endpoints", "", "descriptor file to validate (uses config if not specified)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// validationSummary is what validate prints on success.
type validationSummary struct {
	ConfigPath    string            `json:"config_path"`
	ListenAddress string            `json:"listen_address"`
	Upstreams     []string          `json:"upstreams"`
	EndpointFile  string            `json:"endpoint_file,omitempty"`
	EndpointCount int               `json:"endpoint_count"`
	Endpoints     []endpointSummary `json:"endpoints"`
}

type endpointSummary struct {
	Name     string `json:"name"`
	Method   string `json:"method"`
	Path     string `json:"path"`
	Upstream string `json:"upstream"`
}

func validateSetup(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	descriptorFile := validateFlags.endpoints
	if descriptorFile == "" {
		descriptorFile = cfg.Endpoints.File
	}

	registry, err := gateway.LoadDescriptors(descriptorFile)
	if err != nil {
		return cli.NewConfigError("endpoints", err.Error())
	}

	// Every descriptor must point at a configured upstream, or requests
	// to it will fail at runtime with CONFIG_ERROR.
	var missing []string
	for _, d := range registry.All() {
		if _, ok := cfg.Upstreams[d.Upstream]; !ok {
			missing = append(missing, fmt.Sprintf("%s (upstream %q)", d.Name, d.Upstream))
		}
	}
	if len(missing) > 0 {
		return cli.NewConfigError("endpoints", fmt.Sprintf("descriptors reference unconfigured upstreams: %v", missing))
	}

	summary := validationSummary{
		ConfigPath:    cfgFile,
		ListenAddress: cfg.Server.ListenAddress,
		EndpointFile:  descriptorFile,
		EndpointCount: len(registry.All()),
	}
	for name := range cfg.Upstreams {
		summary.Upstreams = append(summary.Upstreams, name)
	}
	sort.Strings(summary.Upstreams)
	for _, d := range registry.All() {
		summary.Endpoints = append(summary.Endpoints, endpointSummary{
			Name:     d.Name,
			Method:   d.Method,
			Path:     d.Path,
			Upstream: d.Upstream,
		})
	}

	if cli.OutputFormat(validateFlags.format) == cli.FormatJSON {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, summary)
	}

	fmt.Println("✓ Configuration valid")
	fmt.Printf("  Listen address: %s\n", summary.ListenAddress)
	fmt.Printf("  Upstreams:      %d configured\n", len(summary.Upstreams))
	if summary.EndpointFile != "" {
		fmt.Printf("  Endpoints:      %d from %s\n", summary.EndpointCount, summary.EndpointFile)
	} else {
		fmt.Printf("  Endpoints:      %d (built-in)\n", summary.EndpointCount)
	}
	if verbose {
		for _, e := range summary.Endpoints {
			fmt.Printf("    %-7s %-40s -> %s\n", e.Method, e.Path, e.Upstream)
		}
	}
	return nil
}
