package configcmd

import (
	"fmt"
	"os"
	"path/filepath"

	"calc/internal/config"

	"github.com/spf13/cobra"
)

var (
	configInitForce  bool
	configInitFormat string
	configInitDir    string
)

// configInitCmd generates default configuration
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate default configuration",
	Long: `Generate a default configuration file.

If a configuration file already exists, this will not overwrite it
unless --force is specified.

Examples:
  calc config init
  calc config init --format toml
  calc config init --dir . --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite existing configuration")
	configInitCmd.Flags().StringVar(&configInitFormat, "format", "yaml", "config file format (yaml, toml, json)")
	configInitCmd.Flags().StringVar(&configInitDir, "dir", "", "directory to write to (default $HOME/.config/calc)")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	w := newWriter(cmd)

	dir := configInitDir
	if dir == "" {
		var err error
		dir, err = config.UserConfigDir(config.AppName)
		if err != nil {
			return err
		}
	}

	target := filepath.Join(dir, "config."+configInitFormat)
	if _, err := os.Stat(target); err == nil {
		if !configInitForce {
			return fmt.Errorf("config file already exists at %s; use --force to overwrite", target)
		}
		w.Warn(fmt.Sprintf("Overwriting existing configuration at %s", target))
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to remove existing config: %w", err)
		}
	}

	var (
		path string
		err  error
	)
	if configInitDir == "" {
		path, err = config.GenerateUserConfig(configInitFormat)
	} else {
		path, err = config.GenerateConfig(dir, configInitFormat)
	}
	if err != nil {
		return err
	}

	w.Success(fmt.Sprintf("Configuration initialized at: %s", path))
	return nil
}
