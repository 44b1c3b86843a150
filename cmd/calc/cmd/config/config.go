package configcmd

import (
	"calc/internal/config"

	"github.com/spf13/cobra"
)

// Cmd represents the config command
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and manage calc configuration.

Subcommands:
  show      Display current configuration
  path      Show config file path
  init      Generate default configuration
  validate  Validate configuration`,
	// Config commands load configuration themselves so that an invalid
	// file can still be inspected and validated.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var (
	// configFileFn returns the --config flag value of the root command.
	configFileFn = func() string { return "" }

	// loadFn resolves the configuration in effect, including root flags.
	loadFn = func() (*config.CalcConfig, error) { return config.Load(ConfigFile()) }
)

// NewCommand returns the config command with all subcommands registered.
// configFile reports the path given with --config, if any, and load
// resolves the configuration with the root command's flags applied.
func NewCommand(configFile func() string, load func() (*config.CalcConfig, error)) *cobra.Command {
	if configFile != nil {
		configFileFn = configFile
	}
	if load != nil {
		loadFn = load
	}

	Cmd.AddCommand(configShowCmd)
	Cmd.AddCommand(configPathCmd)
	Cmd.AddCommand(configInitCmd)
	Cmd.AddCommand(configValidateCmd)

	return Cmd
}

// ConfigFile returns the config file path in effect
func ConfigFile() string {
	if f := configFileFn(); f != "" {
		return f
	}
	return config.ConfigFileUsed(config.AppName)
}
