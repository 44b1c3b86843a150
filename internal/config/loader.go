package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AppName is the application name used for config paths and env prefix.
const AppName = "calc"

// configSearchPaths returns the paths to search for config files in order of precedence
// (later paths have higher priority in Viper)
func configSearchPaths(appName string) []string {
	paths := []string{}

	// System-wide (lowest priority)
	paths = append(paths, filepath.Join("/etc", appName))

	// User-specific
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName))
	}

	// Current directory (highest priority for files)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, cwd)
	}

	return paths
}

// UserConfigDir returns the user-specific config directory for the app
func UserConfigDir(appName string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// newViper creates and configures a new Viper instance for the given app
func newViper(appName string) *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml") // default, but will auto-detect

	for _, path := range configSearchPaths(appName) {
		v.AddConfigPath(path)
	}

	// CALC_HISTORY_PATH overrides history.path, and so on
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load loads the configuration for the calc CLI.
func Load(cfgFile string) (*CalcConfig, error) {
	v := newViper(AppName)
	return loadInto(v, cfgFile)
}

// LoadWith loads configuration using a caller-provided viper instance, which
// lets the command layer bind flags before values are resolved.
func LoadWith(v *viper.Viper, cfgFile string) (*CalcConfig, error) {
	for _, path := range configSearchPaths(AppName) {
		v.AddConfigPath(path)
	}
	v.SetConfigName("config")
	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return loadInto(v, cfgFile)
}

func loadInto(v *viper.Viper, cfgFile string) (*CalcConfig, error) {
	setViperDefaults(v, DefaultCalcConfig())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults + env vars
	}

	var cfg CalcConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setViperDefaults sets default values in Viper from a config struct
func setViperDefaults(v *viper.Viper, c *CalcConfig) {
	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.format", c.Log.Format)
	v.SetDefault("log.output", c.Log.Output)
	v.SetDefault("log.file_path", c.Log.FilePath)
	v.SetDefault("log.max_size_mb", c.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", c.Log.MaxBackups)
	v.SetDefault("log.max_age_days", c.Log.MaxAgeDays)
	v.SetDefault("log.enable_caller", c.Log.EnableCaller)
	v.SetDefault("log.no_color", c.Log.NoColor)
	v.SetDefault("log.audit_path", c.Log.AuditPath)
	v.SetDefault("log.audit_max_age_days", c.Log.AuditMaxAgeDays)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.color", c.Output.Color)
	v.SetDefault("history.backend", c.History.Backend)
	v.SetDefault("history.path", c.History.Path)
	v.SetDefault("history.on_corrupt", c.History.OnCorrupt)
	v.SetDefault("shell.mode", c.Shell.Mode)
}

// ConfigFileUsed returns the config file path that was loaded, if any
func ConfigFileUsed(appName string) string {
	v := newViper(appName)
	_ = v.ReadInConfig()
	return v.ConfigFileUsed()
}

// NewViperFromConfig creates a viper instance populated with values from a config struct
func NewViperFromConfig(c *CalcConfig) *viper.Viper {
	v := viper.New()

	v.Set("log.level", c.Log.Level)
	v.Set("log.format", c.Log.Format)
	v.Set("log.output", c.Log.Output)
	v.Set("log.file_path", c.Log.FilePath)
	v.Set("log.max_size_mb", c.Log.MaxSizeMB)
	v.Set("log.max_backups", c.Log.MaxBackups)
	v.Set("log.max_age_days", c.Log.MaxAgeDays)
	v.Set("log.enable_caller", c.Log.EnableCaller)
	v.Set("log.no_color", c.Log.NoColor)
	v.Set("log.audit_path", c.Log.AuditPath)
	v.Set("log.audit_max_age_days", c.Log.AuditMaxAgeDays)
	v.Set("output.format", c.Output.Format)
	v.Set("output.color", c.Output.Color)
	v.Set("history.backend", c.History.Backend)
	v.Set("history.path", c.History.Path)
	v.Set("history.on_corrupt", c.History.OnCorrupt)
	v.Set("shell.mode", c.Shell.Mode)

	return v
}
