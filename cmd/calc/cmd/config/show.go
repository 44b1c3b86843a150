package configcmd

import (
	"fmt"
	"sort"

	"calc/internal/cli/output"
	"calc/internal/config"

	"github.com/spf13/cobra"
)

// configShowCmd shows current configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the configuration values that are in effect, after defaults, the config file, CALC_* environment variables and command-line flags are applied.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadFn()
	if err != nil {
		return err
	}

	v := config.NewViperFromConfig(cfg)
	w := newWriter(cmd)

	if w.Format() != output.FormatTable {
		return w.Write(v.AllSettings())
	}

	keys := v.AllKeys()
	sort.Strings(keys)

	table := output.NewTable("key", "value")
	for _, k := range keys {
		table.AddRow(k, fmt.Sprint(v.Get(k)))
	}
	return w.Write(table)
}
