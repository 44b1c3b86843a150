package configcmd

import (
	"fmt"

	clierrors "calc/internal/cli/errors"

	"github.com/spf13/cobra"
)

// configValidateCmd validates configuration
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the current configuration for errors.

Checks for:
  - Valid YAML/TOML/JSON syntax
  - Known log levels and output formats
  - Known history backend and corrupt-store policy
  - Known shell mode`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	w := newWriter(cmd)
	path := ConfigFile()

	if _, err := loadFn(); err != nil {
		if clierrors.IsRich(err) {
			return err
		}
		return clierrors.ConfigInvalid(path, err)
	}

	if path == "" {
		w.Success("No config file found; defaults are valid")
		return nil
	}
	w.Success(fmt.Sprintf("Configuration is valid: %s", path))
	return nil
}
