package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/config"
)

var flagFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration the sandbox would run with, after the search order
and command line overrides are applied. The output is a valid configuration
file and a good starting point for one.

Examples:
  sandbox config
  sandbox config --format toml > sandbox.toml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVar(&flagFormat, "format", "yaml", "Output format: yaml or toml")
}

func runConfig(cmd *cobra.Command, args []string) error {
	format := config.Format(flagFormat)
	if format != config.FormatYAML && format != config.FormatTOML {
		return fmt.Errorf("unknown format %q, expected yaml or toml", flagFormat)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if cfg.Source != "" {
		fmt.Fprintf(os.Stderr, "# loaded from %s\n", cfg.Source)
	}
	return config.Encode(os.Stdout, cfg, format)
}
