package shell

import (
	"context"
	"errors"
	"fmt"

	"calc/internal/cli/output"

	"github.com/charmbracelet/huh"
)

// RunForm runs the menu as huh forms until Exit is chosen. Leaving a form
// with ctrl+c returns ErrUserAborted.
func (s *Shell) RunForm(ctx context.Context) error {
	for {
		var choice string

		options := make([]huh.Option[string], 0, len(menuItems))
		for _, item := range menuItems {
			options = append(options, huh.NewOption(item.label, item.key))
		}

		menu := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Simple Calculator").
					Options(options...).
					Value(&choice),
			),
		).WithTheme(huh.ThemeCatppuccin()).WithOutput(s.out)

		if err := menu.RunWithContext(ctx); err != nil {
			return formError(err)
		}

		switch choice {
		case choiceExit:
			return nil
		case choiceHistory:
			if err := s.calc.ShowHistory(s.out); err != nil {
				return err
			}
			continue
		}

		op, _ := operationFor(choice)

		var first, second string
		validate := func(text string) error {
			_, err := ParseOperand(text)
			if err != nil {
				return errors.New("Invalid number. Please try again.")
			}
			return nil
		}

		operands := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Enter first number").
					Value(&first).
					Validate(validate),
				huh.NewInput().
					Title(fmt.Sprintf("Enter second number (%s)", op)).
					Value(&second).
					Validate(validate),
			),
		).WithTheme(huh.ThemeCatppuccin()).WithOutput(s.out)

		if err := operands.RunWithContext(ctx); err != nil {
			return formError(err)
		}

		// Both values passed validation.
		a, _ := ParseOperand(first)
		b, _ := ParseOperand(second)

		result, err := s.calc.Calculate(ctx, op, a, b)
		if err != nil {
			s.reportError(err)
			continue
		}
		fmt.Fprintf(s.out, "\nResult: %s\n\n", output.FormatNumber(result))
	}
}

// formError maps huh's abort error to ErrUserAborted.
func formError(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrUserAborted
	}
	return err
}
