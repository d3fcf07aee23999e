package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Carmen-Shannon/oxy-sandbox/engine/profiler"
)

var statsCmd = &cobra.Command{
	Use:   "stats <session>",
	Short: "Summarize recorded frame statistics",
	Long: `Display a summary of a session recorded with --stats-db. The session name
is printed when the sandbox exits and defaults to the start time in UTC.

Examples:
  sandbox stats --stats-db stats.db 20260102T030405Z
  sandbox stats --stats-db stats.db 20260102T030405Z --samples`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

var flagSamples bool

func init() {
	statsCmd.Flags().BoolVar(&flagSamples, "samples", false, "List every sample instead of the summary")
}

func runStats(cmd *cobra.Command, args []string) error {
	if flagStatsDB == "" {
		return fmt.Errorf("--stats-db is required")
	}
	session := args[0]

	store, err := profiler.OpenStore(flagStatsDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if flagSamples {
		samples, err := store.Samples(session)
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			fmt.Printf("No samples recorded for session %s.\n", session)
			return nil
		}
		fmt.Printf("  %-19s  %8s  %8s  %6s  %7s\n", "Time", "FPS", "Heap MB", "Bodies", "Objects")
		fmt.Printf("  %-19s  %8s  %8s  %6s  %7s\n", "----", "---", "-------", "------", "-------")
		for _, s := range samples {
			fmt.Printf("  %-19s  %8.1f  %8.2f  %6d  %7d\n",
				s.Timestamp.Format("2006-01-02 15:04:05"), s.FPS, s.HeapMB, s.Bodies, s.Objects)
		}
		return nil
	}

	sum, err := store.Summary(session)
	if err != nil {
		return err
	}
	if sum.Samples == 0 {
		fmt.Printf("No samples recorded for session %s.\n", session)
		return nil
	}
	fmt.Printf("Session %s\n\n", sum.Session)
	fmt.Printf("  Samples:     %d\n", sum.Samples)
	fmt.Printf("  Average FPS: %.1f\n", sum.AvgFPS)
	fmt.Printf("  Minimum FPS: %.1f\n", sum.MinFPS)
	fmt.Printf("  Peak bodies: %d\n", sum.MaxBody)
	return nil
}
