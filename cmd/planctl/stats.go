package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sasplan/planner/internal/search"
)

func init() {
	rootCmd.AddCommand(newStatsCmd())
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <stats.json>",
		Short: "Pretty-print a saved search statistics snapshot",
		Long: `stats reads a search.Statistics snapshot written by "planctl solve
--stats-out" and prints it in human-readable form.

Example:
  planctl stats run.stats.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args[0])
		},
	}
}

func runStats(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading stats file: %w", err)
	}
	var st search.Statistics
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("parsing stats file %s: %w", path, err)
	}

	if jsonOut {
		return printJSON(st)
	}

	printInfo("Search statistics:\n")
	printInfo("  Expanded:   %s\n", formatNumber(int64(st.Expanded)))
	printInfo("  Generated:  %s\n", formatNumber(int64(st.Generated)))
	printInfo("  Evaluated:  %s\n", formatNumber(int64(st.Evaluated)))
	printInfo("  Evaluations: %s\n", formatNumber(int64(st.Evaluations)))
	printInfo("  Reopened:   %s\n", formatNumber(int64(st.Reopened)))
	printInfo("  Dead ends:  %s\n", formatNumber(int64(st.DeadEnds)))
	printInfo("  Wall time:  %s\n", st.WallTime)
	return nil
}

func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}
	var result []byte
	for i, c := range []byte(str) {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, c)
	}
	return string(result)
}
