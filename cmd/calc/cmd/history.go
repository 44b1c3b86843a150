package cmd

import (
	"calc/internal/cli/output"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists past calculations
var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"hist"},
	Short:   "Show calculation history",
	Long: `Show the last 25 calculations, newest first.

Output formats:
  table  the history listing with timestamps (default)
  json   the records as a JSON array
  yaml   the records as a YAML list
  quiet  one result per line`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n records (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	records := engine.History()
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	log.Debug("listing history", "records", len(records), "path", store.Path())
	return newWriter(cmd).Write(output.NewHistoryView(records))
}
