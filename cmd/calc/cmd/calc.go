package cmd

import (
	clierrors "calc/internal/cli/errors"
	"calc/internal/cli/output"
	"calc/internal/history"
	"calc/internal/shell"

	"github.com/spf13/cobra"
)

// operationCommands are the one-shot arithmetic subcommands.
var operationCommands = []struct {
	use     string
	aliases []string
	short   string
	op      history.Operation
}{
	{"add", []string{"plus"}, "Add two numbers", history.OpAdd},
	{"sub", []string{"subtract", "minus"}, "Subtract the second number from the first", history.OpSubtract},
	{"mul", []string{"multiply", "times"}, "Multiply two numbers", history.OpMultiply},
	{"div", []string{"divide"}, "Divide the first number by the second", history.OpDivide},
}

func newOperationCommand(use string, aliases []string, short string, op history.Operation) *cobra.Command {
	return &cobra.Command{
		Use:     use + " <a> <b>",
		Aliases: aliases,
		Short:   short,
		Long: short + `.

The calculation is recorded in the history. Negative operands must follow
'--' so they are not read as flags.

Examples:
  calc ` + use + ` 10 5
  calc ` + use + ` -o json 1.5 2
  calc ` + use + ` -- -3 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, op, args)
		},
	}
}

func runOperation(cmd *cobra.Command, op history.Operation, args []string) error {
	operands := make([]float64, len(args))
	for i, arg := range args {
		f, err := shell.ParseOperand(arg)
		if err != nil {
			return clierrors.InvalidInput(arg, err)
		}
		operands[i] = f
	}

	if _, err := engine.Calculate(cmd.Context(), op, operands[0], operands[1]); err != nil {
		return err
	}

	records := store.Records()
	return newWriter(cmd).Write(output.NewResultView(records[len(records)-1]))
}

func init() {
	for _, oc := range operationCommands {
		rootCmd.AddCommand(newOperationCommand(oc.use, oc.aliases, oc.short, oc.op))
	}
}
