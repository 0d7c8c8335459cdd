package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lentera",
	Short: "Lentera - API gateway for the Lentera admin dashboard",
	Long: `Lentera is the API gateway that fronts the Lentera admin dashboard.

It presents a single origin to the dashboard and forwards requests to:
  - The app backend (orders, products, agents, analytics)
  - Shipping rate and destination services
  - The payment provider
  - The WhatsApp messaging service
  - The webinar service

Every response is normalized into one envelope shape and upstream error
details are sanitized before they reach the browser.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
