package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	configcmd "calc/cmd/calc/cmd/config"
	"calc/internal/calc"
	clierrors "calc/internal/cli/errors"
	"calc/internal/cli/middleware"
	"calc/internal/cli/output"
	"calc/internal/config"
	"calc/internal/history"
	"calc/internal/logger"
	"calc/internal/shell"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// annotationNoStore marks commands that run without opening the history store.
const annotationNoStore = "calc/no-store"

var (
	// cfgFile is the path to the config file (set via --config flag)
	cfgFile string

	// v resolves configuration; persistent flags are bound to it
	v = viper.New()

	// cfg holds the loaded configuration
	cfg *config.CalcConfig

	// log is the logger instance
	log *logger.Logger

	// auditLog is the audit logger instance
	auditLog *logger.AuditLogger

	// store is the calculation history, opened for commands that need it
	store *history.Store

	// engine performs calculations against store
	engine *calc.Engine

	// cmdCtx carries the command context and logger
	cmdCtx context.Context

	verboseMode bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "calc",
	Short: "A calculator that remembers",
	Long: `calc performs the four basic arithmetic operations and keeps a history
of the last 25 calculations across runs.

Run without a subcommand to start the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		var err error
		log, err = logger.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if cfg.Log.AuditPath != "" {
			auditLog, err = logger.NewAuditLogger(cfg.Log.AuditPath, cfg.Log.AuditMaxAgeDays)
			if err != nil {
				log.Warn("failed to initialize audit logger", logger.WithError(err))
			}
		}

		cc := logger.NewCommandContext(cmd, args)
		cmdCtx = logger.WithCommandContext(cmd.Context(), cc)
		cmdCtx = logger.WithLogger(cmdCtx, log)
		cmd.SetContext(cmdCtx)

		if skipStore(cmd) {
			return nil
		}
		return openEngine(cmdCtx)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanup()
	},
	RunE: runShell,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	middleware.ApplyRecursive(rootCmd,
		middleware.Logging(middleware.LoggingOptions{
			Logger:       Log,
			AuditLogger:  AuditLog,
			SkipCommands: []string{"version"},
		}),
		middleware.Timing(IsVerbose),
	)

	if err := rootCmd.Execute(); err != nil {
		// PersistentPostRunE does not run when RunE fails.
		cleanup()
		printError(err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/calc/config.yaml)")
	flags.StringP("output", "o", "table", "output format (table, json, yaml, quiet)")
	flags.BoolVarP(&verboseMode, "verbose", "v", false, "verbose output (debug logging and timings)")
	flags.String("history-file", "", "history file (default calculator_history.json in the working directory)")
	flags.String("history-backend", "", "history backend (json, sqlite)")
	bindFlags(flags)

	rootCmd.AddCommand(configcmd.NewCommand(ConfigFile, effectiveConfig))
}

// bindFlags binds the persistent flags to their config keys.
func bindFlags(flags *pflag.FlagSet) {
	v.BindPFlag("output.format", flags.Lookup("output"))
	v.BindPFlag("history.path", flags.Lookup("history-file"))
	v.BindPFlag("history.backend", flags.Lookup("history-backend"))
}

// loadConfig resolves flags, environment and config file into cfg.
func loadConfig() error {
	if cfg != nil {
		return nil
	}

	loaded, err := config.LoadWith(v, cfgFile)
	if err != nil {
		if errors.Is(err, config.ErrInvalidConfig) {
			return clierrors.ConfigInvalid(v.ConfigFileUsed(), err)
		}
		var pathErr *fs.PathError
		if cfgFile != "" && errors.As(err, &pathErr) && errors.Is(err, fs.ErrNotExist) {
			return clierrors.ConfigNotFound(cfgFile).WithCause(err)
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	if verboseMode {
		loaded.Log.Level = "debug"
	}
	cfg = loaded
	return nil
}

// effectiveConfig returns the configuration with flags applied, for the
// config subcommands which skip the root setup.
func effectiveConfig() (*config.CalcConfig, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openEngine opens the configured history backend and builds the engine.
func openEngine(ctx context.Context) error {
	path := cfg.HistoryPath()

	var backend history.Backend
	switch cfg.History.Backend {
	case config.BackendSQLite:
		backend = history.NewSQLiteBackend(path)
	default:
		backend = history.NewFileBackend(path)
	}

	policy := history.CorruptFail
	if cfg.History.OnCorrupt == config.OnCorruptReset {
		policy = history.CorruptReset
	}

	var err error
	store, err = history.Open(ctx, backend,
		history.WithLogger(log.With("component", "history")),
		history.WithAuditLogger(auditLog),
		history.WithCorruptPolicy(policy),
	)
	if err != nil {
		backend.Close()
		return err
	}

	engine = calc.New(store,
		calc.WithLogger(log.With("component", "calc")),
		calc.WithAuditLogger(auditLog),
		calc.WithColor(cfg.Output.Color && isTerminal(os.Stdout)),
	)
	return nil
}

func skipStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[annotationNoStore]; ok {
			return true
		}
	}
	return false
}

// cleanup releases the store and loggers. It is safe to call twice.
func cleanup() error {
	var errs []error
	if store != nil {
		errs = append(errs, store.Close())
		store = nil
	}
	if auditLog != nil {
		errs = append(errs, auditLog.Close())
		auditLog = nil
	}
	if log != nil {
		errs = append(errs, log.Close())
	}
	return errors.Join(errs...)
}

// printError renders err for the user on stderr.
func printError(err error) {
	rich := toRich(err)
	if isTerminal(os.Stderr) {
		fmt.Fprintln(os.Stderr, clierrors.Display(rich))
		return
	}
	fmt.Fprint(os.Stderr, clierrors.DisplaySimple(rich))
}

// toRich maps domain errors to user-facing errors.
func toRich(err error) error {
	if clierrors.IsRich(err) {
		return err
	}

	var pe *history.PersistenceError
	switch {
	case errors.Is(err, calc.ErrDivisionByZero):
		return clierrors.DivisionByZero(err)
	case errors.As(err, &pe):
		return clierrors.Persistence(pe.Path, err)
	case errors.Is(err, shell.ErrInvalidInput):
		return clierrors.InvalidInput("", err)
	case errors.Is(err, shell.ErrUserAborted):
		return clierrors.UserCancelled()
	case errors.Is(err, config.ErrInvalidConfig):
		return clierrors.ConfigInvalid(v.ConfigFileUsed(), err)
	}
	return err
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// newWriter returns an output writer for the configured format.
func newWriter(cmd *cobra.Command) *output.Writer {
	return output.NewWriter(output.ParseFormat(cfg.Output.Format)).
		WithOutput(cmd.OutOrStdout()).
		WithError(cmd.ErrOrStderr()).
		WithColor(cfg.Output.Color && isTerminal(os.Stdout))
}

// Config returns the current configuration (for use by subcommands)
func Config() *config.CalcConfig {
	return cfg
}

// ConfigFile returns the config file path (for use by subcommands)
func ConfigFile() string {
	return cfgFile
}

// Log returns the logger instance (for use by subcommands)
func Log() *logger.Logger {
	return log
}

// AuditLog returns the audit logger instance (for use by subcommands)
func AuditLog() *logger.AuditLogger {
	return auditLog
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verboseMode
}
