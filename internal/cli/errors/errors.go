// Package errors provides rich error types and display for the calc CLI.
//
// Errors carry a code for categorization and actionable suggestions, and
// can be rendered either as a styled box or as plain text.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Code represents an error code for categorization.
type Code string

// Common error codes
const (
	CodeUnknown        Code = "UNKNOWN"
	CodeConfigNotFound Code = "CONFIG_NOT_FOUND"
	CodeConfigInvalid  Code = "CONFIG_INVALID"
	CodeDivisionByZero Code = "DIVISION_BY_ZERO"
	CodeInvalidInput   Code = "INVALID_INPUT"
	CodePersistence    Code = "PERSISTENCE"
	CodeInternal       Code = "INTERNAL"
	CodeUserCancelled  Code = "USER_CANCELLED"
)

// Palette used by Display.
var (
	colorError = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"}
	colorMuted = lipgloss.AdaptiveColor{Light: "#6C6F85", Dark: "#A6ADC8"}
	colorText  = lipgloss.AdaptiveColor{Light: "#4C4F69", Dark: "#CDD6F4"}
	colorInfo  = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
)

// Rich is an enhanced error with additional context for display.
type Rich struct {
	// Code is a unique error code for categorization
	Code Code
	// Message is the user-friendly error message
	Message string
	// Details provides additional technical information
	Details string
	// Suggestions are actionable items the user can try
	Suggestions []string
	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *Rich) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Rich) Unwrap() error {
	return e.Cause
}

// New creates a new Rich error.
func New(code Code, message string) *Rich {
	return &Rich{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code Code, message string) *Rich {
	return &Rich{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithDetails adds technical details to the error.
func (e *Rich) WithDetails(details string) *Rich {
	e.Details = details
	return e
}

// WithSuggestions adds actionable suggestions.
func (e *Rich) WithSuggestions(suggestions ...string) *Rich {
	e.Suggestions = suggestions
	return e
}

// WithCause sets the underlying cause.
func (e *Rich) WithCause(cause error) *Rich {
	e.Cause = cause
	return e
}

// IsRich checks if an error is a Rich error.
func IsRich(err error) bool {
	var rich *Rich
	return errors.As(err, &rich)
}

// AsRich converts an error to a Rich error if possible.
func AsRich(err error) *Rich {
	var rich *Rich
	if errors.As(err, &rich) {
		return rich
	}
	return nil
}

// Display formats the error as a styled box.
func Display(err error) string {
	rich := AsRich(err)
	if rich == nil {
		// Wrap plain error
		rich = Wrap(err, CodeUnknown, err.Error())
	}

	var b strings.Builder

	// Error box style
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorError).
		Padding(0, 1).
		Width(60)

	// Header
	headerStyle := lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)

	codeStyle := lipgloss.NewStyle().
		Foreground(colorMuted).
		Italic(true)

	b.WriteString(headerStyle.Render("✗ Error"))
	b.WriteString(" ")
	b.WriteString(codeStyle.Render(fmt.Sprintf("[%s]", rich.Code)))
	b.WriteString("\n\n")

	// Message
	messageStyle := lipgloss.NewStyle().
		Foreground(colorText)
	b.WriteString(messageStyle.Render(rich.Message))
	b.WriteString("\n")

	// Details
	if rich.Details != "" {
		b.WriteString("\n")
		detailsStyle := lipgloss.NewStyle().
			Foreground(colorMuted)
		b.WriteString(detailsStyle.Render(rich.Details))
		b.WriteString("\n")
	}

	// Cause
	if rich.Cause != nil {
		b.WriteString("\n")
		causeStyle := lipgloss.NewStyle().
			Foreground(colorMuted)
		b.WriteString(causeStyle.Render("Caused by: " + rich.Cause.Error()))
		b.WriteString("\n")
	}

	// Suggestions
	if len(rich.Suggestions) > 0 {
		b.WriteString("\n")
		suggestStyle := lipgloss.NewStyle().
			Foreground(colorInfo)
		b.WriteString(suggestStyle.Render("💡 Suggestions:"))
		b.WriteString("\n")

		for _, s := range rich.Suggestions {
			b.WriteString("   • ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	return boxStyle.Render(b.String())
}

// DisplaySimple formats an error for non-TUI output.
func DisplaySimple(err error) string {
	rich := AsRich(err)
	if rich == nil {
		return fmt.Sprintf("Error: %v", err)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Error [%s]: %s\n", rich.Code, rich.Message))

	if rich.Details != "" {
		b.WriteString(fmt.Sprintf("  Details: %s\n", rich.Details))
	}

	if rich.Cause != nil {
		b.WriteString(fmt.Sprintf("  Caused by: %v\n", rich.Cause))
	}

	if len(rich.Suggestions) > 0 {
		b.WriteString("  Suggestions:\n")
		for _, s := range rich.Suggestions {
			b.WriteString(fmt.Sprintf("    - %s\n", s))
		}
	}

	return b.String()
}

// Common errors with helpful messages

// ConfigNotFound returns a config not found error.
func ConfigNotFound(path string) *Rich {
	return New(CodeConfigNotFound, "Configuration file not found").
		WithDetails(fmt.Sprintf("Expected config at: %s", path)).
		WithSuggestions(
			"Run 'calc config init' to create a configuration file",
			"Use '--config' flag to specify a custom config path",
		)
}

// ConfigInvalid returns a config validation error.
func ConfigInvalid(path string, validationErr error) *Rich {
	r := New(CodeConfigInvalid, "Configuration is invalid").
		WithCause(validationErr).
		WithSuggestions(
			"Run 'calc config validate' to see detailed errors",
			"Run 'calc config show' to inspect the effective values",
		)
	if path != "" {
		r.WithDetails(fmt.Sprintf("File: %s", path))
	}
	return r
}

// DivisionByZero returns the error shown for a zero divisor.
func DivisionByZero(cause error) *Rich {
	return New(CodeDivisionByZero, "Cannot divide by zero!").
		WithCause(cause)
}

// InvalidInput returns an error for an operand that is not a number.
func InvalidInput(value string, cause error) *Rich {
	return New(CodeInvalidInput, fmt.Sprintf("Invalid number: %q", value)).
		WithCause(cause).
		WithSuggestions(
			"Use a decimal number such as 12, -3.5 or 1e6",
			"Put negative numbers after '--', for example: calc sub -- -3 2",
		)
}

// Persistence returns an error for a history store that could not be read
// or written.
func Persistence(path string, cause error) *Rich {
	return New(CodePersistence, "History could not be saved or loaded").
		WithDetails(fmt.Sprintf("History file: %s", path)).
		WithCause(cause).
		WithSuggestions(
			"Check that the history file and its directory are writable",
			"Set 'history.on_corrupt: reset' to move an unreadable file aside",
			"Use '--history-file' to point at a different location",
		)
}

// UserCancelled returns an error indicating the user cancelled the operation.
func UserCancelled() *Rich {
	return New(CodeUserCancelled, "Operation cancelled by user")
}
