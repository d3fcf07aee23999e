// sandbox is a first-person physics sandbox: fly around a brick scene and fire boxes into it.
//
// Usage:
//
//	sandbox run              - Open the sandbox window (default command)
//	sandbox config           - Print the effective configuration
//	sandbox stats <session>  - Summarize recorded frame statistics
//
// Global flags:
//
//	--config <path>    - Configuration file (YAML or TOML)
//	--stats-db <path>  - Frame statistics database (default: none)
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig  string
	flagStatsDB string
)

func init() {
	// glfw and the surface must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "oxy sandbox - a rigid body physics playground",
	Long: `oxy sandbox opens a window onto a floor ringed by brick walls.
Fly the camera around and left click to launch boxes into the scene.

Available commands:
  run      - Open the sandbox window
  config   - Print the effective configuration
  stats    - Summarize recorded frame statistics

Examples:
  sandbox
  sandbox run --config sandbox.toml --vsync=false
  sandbox run --profile --stats-db ~/.oxy-sandbox/stats.db
  sandbox config --format toml > sandbox.toml
  sandbox stats --stats-db ~/.oxy-sandbox/stats.db 20260102T030405Z`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSandbox,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML or TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&flagStatsDB, "stats-db", "", "Path to the frame statistics database (empty disables recording)")
	addRunFlags(rootCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statsCmd)
}
