package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRich_Error(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		name string
		err  *Rich
		want string
	}{
		{"without cause", New(CodeInternal, "boom"), "[INTERNAL] boom"},
		{"with cause", Wrap(cause, CodePersistence, "save failed"), "[PERSISTENCE] save failed: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRich_Unwrap(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := fmt.Errorf("outer: %w", Persistence("/tmp/h.json", sentinel))

	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should find the cause through Rich")
	}
	if !IsRich(err) {
		t.Error("IsRich() = false, want true")
	}
	rich := AsRich(err)
	if rich == nil || rich.Code != CodePersistence {
		t.Fatalf("AsRich() = %v", rich)
	}
	if AsRich(sentinel) != nil {
		t.Error("AsRich() of a plain error should be nil")
	}
}

func TestDisplaySimple(t *testing.T) {
	out := DisplaySimple(DivisionByZero(errors.New("division by zero")))
	if !strings.HasPrefix(out, "Error [DIVISION_BY_ZERO]: Cannot divide by zero!") {
		t.Errorf("DisplaySimple() = %q", out)
	}
	if !strings.Contains(out, "Caused by: division by zero") {
		t.Errorf("DisplaySimple() missing cause: %q", out)
	}

	out = DisplaySimple(InvalidInput("abc", errors.New("bad syntax")))
	if !strings.Contains(out, "Suggestions:") {
		t.Errorf("DisplaySimple() missing suggestions: %q", out)
	}

	if got := DisplaySimple(errors.New("plain")); got != "Error: plain" {
		t.Errorf("DisplaySimple(plain) = %q", got)
	}
}

func TestDisplay(t *testing.T) {
	out := Display(ConfigInvalid("/etc/calc/config.yaml", errors.New("bad level")))
	for _, want := range []string{"CONFIG_INVALID", "Configuration is invalid", "bad level"} {
		if !strings.Contains(out, want) {
			t.Errorf("Display() missing %q:\n%s", want, out)
		}
	}
}
