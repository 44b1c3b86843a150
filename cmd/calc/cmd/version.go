package cmd

import (
	"fmt"

	"calc/internal/cli/output"
	"calc/internal/version"

	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Long:        `Print the version, commit hash, and build details of calc.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoStore: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		w := newWriter(cmd)
		switch w.Format() {
		case output.FormatTable:
			fmt.Fprintln(cmd.OutOrStdout(), info.Full())
			return nil
		case output.FormatQuiet:
			return w.Write(info.Version)
		default:
			return w.Write(info)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
