package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	clierrors "calc/internal/cli/errors"
	"calc/internal/config"
	"calc/internal/logger"
	"calc/internal/shell"

	"github.com/spf13/cobra"
)

var shellMode string

// shellCmd starts the interactive menu
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start the interactive calculator menu",
	Long: `Start the interactive calculator menu. This is also what runs when calc
is invoked without a subcommand.

Modes:
  auto   forms on a terminal, plain prompts otherwise (default)
  form   always use forms
  plain  numbered menu with line prompts, suitable for pipes

The config file is watched while the menu runs; send SIGHUP to force a
reload.`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	shellCmd.Flags().StringVar(&shellMode, "mode", "", "menu mode (auto, form, plain); overrides shell.mode")
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	name := cfg.Shell.Mode
	if shellMode != "" {
		name = shellMode
	}
	mode, err := shell.ParseMode(name)
	if err != nil {
		return clierrors.Wrap(err, clierrors.CodeInvalidInput, "Invalid shell mode").
			WithSuggestions("Use --mode auto, form or plain")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	watchConfig(ctx)

	sh := shell.New(engine, os.Stdin, cmd.OutOrStdout(), log.With("component", "shell"))
	return sh.Run(ctx, mode)
}

// watchConfig applies output.color changes to a running shell until ctx
// is done. SIGHUP forces a reload.
func watchConfig(ctx context.Context) {
	watcher, err := config.NewConfigWatcher(cfgFile)
	if err != nil {
		log.Debug("config watching disabled", "reason", err.Error())
		return
	}

	watcher.OnChange(func(c *config.CalcConfig) {
		engine.SetColor(c.Output.Color && isTerminal(os.Stdout))
		log.Info("configuration reloaded", "path", watcher.Path(), "color", c.Output.Color)
	})
	watcher.Start()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		defer signal.Stop(hup)
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				if err := watcher.Reload(); err != nil {
					log.Warn("config reload failed", "path", watcher.Path(), logger.WithError(err))
				}
			}
		}
	}()
}
