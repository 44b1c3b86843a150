package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks enumerated configuration values.
func Validate(cfg *CalcConfig) error {
	var problems []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true, "": true}
	if !validLevels[strings.ToLower(cfg.Log.Level)] {
		problems = append(problems, fmt.Sprintf("log.level %q (must be debug, info, warn, or error)", cfg.Log.Level))
	}

	switch cfg.Output.Format {
	case "", "table", "json", "yaml", "quiet":
	default:
		problems = append(problems, fmt.Sprintf("output.format %q (must be table, json, yaml, or quiet)", cfg.Output.Format))
	}

	switch cfg.History.Backend {
	case "", BackendJSON, BackendSQLite:
	default:
		problems = append(problems, fmt.Sprintf("history.backend %q (must be json or sqlite)", cfg.History.Backend))
	}

	switch cfg.History.OnCorrupt {
	case "", OnCorruptFail, OnCorruptReset:
	default:
		problems = append(problems, fmt.Sprintf("history.on_corrupt %q (must be fail or reset)", cfg.History.OnCorrupt))
	}

	switch cfg.Shell.Mode {
	case "", ShellModeAuto, ShellModeForm, ShellModePlain:
	default:
		problems = append(problems, fmt.Sprintf("shell.mode %q (must be auto, form, or plain)", cfg.Shell.Mode))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
