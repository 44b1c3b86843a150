package middleware

import (
	"fmt"
	"time"

	"calc/internal/logger"

	"github.com/spf13/cobra"
)

// LoggingOptions configures the logging middleware.
type LoggingOptions struct {
	// Logger returns the logger to use. It is called at execution time
	// because the logger is built in PersistentPreRunE.
	Logger func() *logger.Logger
	// AuditLogger returns the audit logger (optional).
	AuditLogger func() *logger.AuditLogger
	// SkipCommands are commands that should not be logged
	SkipCommands []string
}

// Logging creates a middleware that logs command execution.
func Logging(opts LoggingOptions) Middleware {
	return func(next RunFunc) RunFunc {
		return func(cmd *cobra.Command, args []string) error {
			for _, skip := range opts.SkipCommands {
				if cmd.Name() == skip {
					return next(cmd, args)
				}
			}

			log := logger.Nop()
			if opts.Logger != nil {
				if l := opts.Logger(); l != nil {
					log = l
				}
			}

			var attrs []any
			if ctx := cmd.Context(); ctx != nil && logger.CommandContextFrom(ctx) != nil {
				cc := logger.CommandContextFrom(ctx)
				for _, a := range cc.LogAttrs() {
					attrs = append(attrs, a)
				}
			} else {
				attrs = append(attrs, "command", cmd.CommandPath())
			}
			log = log.With(attrs...)

			log.Debug("command started")
			startTime := time.Now()

			err := next(cmd, args)

			duration := time.Since(startTime)
			if err != nil {
				log.Error("command failed",
					"duration_ms", duration.Milliseconds(),
					logger.WithError(err),
				)
			} else {
				log.Debug("command completed",
					"duration_ms", duration.Milliseconds(),
				)
			}

			if opts.AuditLogger != nil {
				outcome := logger.AuditOutcomeSuccess
				if err != nil {
					outcome = logger.AuditOutcomeFailure
				}
				opts.AuditLogger().LogCommand(cmd.Context(), cmd.CommandPath(), outcome, map[string]any{
					"duration_ms": duration.Milliseconds(),
					"args":        args,
				})
			}

			return err
		}
	}
}

// Timing creates a middleware that prints the command duration to stderr
// when verbose returns true.
func Timing(verbose func() bool) Middleware {
	return func(next RunFunc) RunFunc {
		return func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			err := next(cmd, args)
			if verbose() {
				duration := time.Since(start)
				fmt.Fprintf(cmd.ErrOrStderr(), "\nCompleted in %s\n", duration.Round(time.Millisecond))
			}
			return err
		}
	}
}
