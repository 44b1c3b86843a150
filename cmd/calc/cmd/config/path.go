package configcmd

import (
	"github.com/spf13/cobra"
)

// configPathCmd shows config file path
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	Long:  `Display the path to the configuration file being used.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	w := newWriter(cmd)

	if path := ConfigFile(); path != "" {
		return w.Write(path)
	}
	return w.Write("No config file found, using defaults")
}
