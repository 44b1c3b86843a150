// Package shell implements the interactive calculator menu.
//
// Two front ends share the same menu: a line-oriented loop that works on
// any reader and writer, and a form-based one built on huh for terminals.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"calc/internal/calc"
	"calc/internal/history"
	"calc/internal/logger"

	"golang.org/x/term"
)

var (
	// ErrInvalidInput is returned when operand text is not a number.
	ErrInvalidInput = errors.New("invalid number")

	// ErrUserAborted is returned when the user leaves a form with ctrl+c.
	ErrUserAborted = errors.New("aborted by user")

	// ErrUnknownMode is returned by ParseMode for an unsupported mode name.
	ErrUnknownMode = errors.New("unknown shell mode")
)

// Mode selects the front end.
type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeForm  Mode = "form"
	ModePlain Mode = "plain"
)

// Calculator is what the menu drives.
type Calculator interface {
	Calculate(ctx context.Context, op history.Operation, a, b float64) (float64, error)
	ShowHistory(w io.Writer) error
}

// menu choices in display order.
var menuItems = []struct {
	key   string
	label string
	op    history.Operation
}{
	{"1", "Add", history.OpAdd},
	{"2", "Subtract", history.OpSubtract},
	{"3", "Multiply", history.OpMultiply},
	{"4", "Divide", history.OpDivide},
	{"5", "Show History", ""},
	{"6", "Exit", ""},
}

const (
	choiceHistory = "5"
	choiceExit    = "6"
)

// Shell runs the menu loop against a Calculator.
type Shell struct {
	calc Calculator
	in   io.Reader
	out  io.Writer
	log  *logger.Logger
}

// New creates a shell reading from in and writing to out.
func New(c Calculator, in io.Reader, out io.Writer, log *logger.Logger) *Shell {
	if log == nil {
		log = logger.Nop()
	}
	return &Shell{calc: c, in: in, out: out, log: log}
}

// Run starts the front end chosen by mode. ModeAuto picks the form front
// end only when both input and output are terminals.
func (s *Shell) Run(ctx context.Context, mode Mode) error {
	resolved := ResolveMode(mode, s.in, s.out)
	s.log.Debug("starting interactive shell", "mode", string(resolved))

	if resolved == ModeForm {
		return s.RunForm(ctx)
	}
	return s.RunPlain(ctx)
}

// ParseMode validates a mode name. An empty name means ModeAuto.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeForm, ModePlain:
		return m, nil
	}
	return "", fmt.Errorf("%w %q (want auto, form or plain)", ErrUnknownMode, name)
}

// ResolveMode turns ModeAuto into a concrete mode.
func ResolveMode(mode Mode, in io.Reader, out io.Writer) Mode {
	switch mode {
	case ModeForm, ModePlain:
		return mode
	}
	if isTerminal(in) && isTerminal(out) {
		return ModeForm
	}
	return ModePlain
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ParseOperand parses operand text. Surrounding whitespace is ignored.
func ParseOperand(text string) (float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidInput)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInput, text)
	}
	return f, nil
}

// operationFor maps a menu choice to its operation.
func operationFor(choice string) (history.Operation, bool) {
	for _, item := range menuItems {
		if item.key == choice && item.op != "" {
			return item.op, true
		}
	}
	return "", false
}

// reportError writes the message for a failed calculation.
func (s *Shell) reportError(err error) {
	if errors.Is(err, calc.ErrDivisionByZero) {
		fmt.Fprint(s.out, "\nError: Cannot divide by zero!\n\n")
		return
	}
	s.log.Error("calculation failed", logger.WithError(err))
	fmt.Fprintf(s.out, "\nAn error occurred: %v\n\n", err)
}
