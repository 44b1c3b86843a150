package configcmd

import (
	"calc/internal/cli/output"

	"github.com/spf13/cobra"
)

// newWriter creates an output writer honoring the --output flag.
func newWriter(cmd *cobra.Command) *output.Writer {
	format := "table"
	if f := cmd.Flag("output"); f != nil {
		format = f.Value.String()
	}
	return output.NewWriter(output.ParseFormat(format)).
		WithOutput(cmd.OutOrStdout()).
		WithError(cmd.ErrOrStderr())
}
