package config

// LogConfig holds logging configuration
type LogConfig struct {
	Level           string `mapstructure:"level"`              // debug, info, warn, error
	Format          string `mapstructure:"format"`             // text, json, pretty
	Output          string `mapstructure:"output"`             // stdout, stderr, or file path
	FilePath        string `mapstructure:"file_path"`          // path to log file (in addition to output)
	MaxSizeMB       int    `mapstructure:"max_size_mb"`        // max size in MB before rotation
	MaxBackups      int    `mapstructure:"max_backups"`        // max number of old log files to keep
	MaxAgeDays      int    `mapstructure:"max_age_days"`       // max days to retain old log files
	EnableCaller    bool   `mapstructure:"enable_caller"`      // include source file/line in logs
	NoColor         bool   `mapstructure:"no_color"`           // disable colored output (pretty format only)
	AuditPath       string `mapstructure:"audit_path"`         // path to audit log file
	AuditMaxAgeDays int    `mapstructure:"audit_max_age_days"` // max days to retain audit logs
}

// OutputConfig holds output formatting options
type OutputConfig struct {
	Format string `mapstructure:"format"` // table, json, yaml, quiet
	Color  bool   `mapstructure:"color"`
}

// HistoryConfig selects and configures the calculation history backing store
type HistoryConfig struct {
	// Backend is the storage backend: "json" (default) or "sqlite"
	Backend string `mapstructure:"backend"`

	// Path is the backing file. Relative paths resolve against the
	// working directory. Empty selects the backend default.
	Path string `mapstructure:"path"`

	// OnCorrupt controls what happens when the store cannot be parsed:
	// - fail: abort with a persistence error (default)
	// - reset: move the file aside and start with an empty history
	OnCorrupt string `mapstructure:"on_corrupt"`
}

// ShellConfig controls the interactive menu
type ShellConfig struct {
	// Mode is "auto", "form" or "plain". auto uses forms on a terminal.
	Mode string `mapstructure:"mode"`
}

// CalcConfig is the complete configuration for the calc CLI
type CalcConfig struct {
	Log     LogConfig     `mapstructure:"log"`
	Output  OutputConfig  `mapstructure:"output"`
	History HistoryConfig `mapstructure:"history"`
	Shell   ShellConfig   `mapstructure:"shell"`
}

// History backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Corrupt store policies
const (
	OnCorruptFail  = "fail"
	OnCorruptReset = "reset"
)

// Shell modes
const (
	ShellModeAuto  = "auto"
	ShellModeForm  = "form"
	ShellModePlain = "plain"
)

// Default history file names per backend
const (
	DefaultJSONHistoryFile   = "calculator_history.json"
	DefaultSQLiteHistoryFile = "calculator_history.db"
)

// DefaultCalcConfig returns sensible defaults for the calc CLI
func DefaultCalcConfig() *CalcConfig {
	return &CalcConfig{
		Log: LogConfig{
			Level:           "warn",
			Format:          "pretty",
			Output:          "stderr",
			FilePath:        "",
			MaxSizeMB:       100,
			MaxBackups:      3,
			MaxAgeDays:      28,
			EnableCaller:    false,
			AuditPath:       "",
			AuditMaxAgeDays: 365,
		},
		Output: OutputConfig{
			Format: "table",
			Color:  true,
		},
		History: HistoryConfig{
			Backend:   BackendJSON,
			Path:      "",
			OnCorrupt: OnCorruptFail,
		},
		Shell: ShellConfig{
			Mode: ShellModeAuto,
		},
	}
}

// HistoryPath returns the configured history path, falling back to the
// backend's default file name.
func (c *CalcConfig) HistoryPath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	if c.History.Backend == BackendSQLite {
		return DefaultSQLiteHistoryFile
	}
	return DefaultJSONHistoryFile
}
