package shell

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"calc/internal/cli/output"
)

// RunPlain runs the line-oriented menu until Exit is chosen or input ends.
func (s *Shell) RunPlain(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)

	readLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		choice, ok := readLine()
		if !ok {
			return scanner.Err()
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

		op, valid := operationFor(choice)
		if !valid {
			fmt.Fprint(s.out, "\nInvalid option. Please try again.\n\n")
			continue
		}

		fmt.Fprint(s.out, "Enter first number: ")
		line, ok := readLine()
		if !ok {
			return scanner.Err()
		}
		a, err := ParseOperand(line)
		if err != nil {
			fmt.Fprintln(s.out, "Invalid number. Please try again.")
			continue
		}

		fmt.Fprint(s.out, "Enter second number: ")
		line, ok = readLine()
		if !ok {
			return scanner.Err()
		}
		b, err := ParseOperand(line)
		if err != nil {
			fmt.Fprintln(s.out, "Invalid number. Please try again.")
			continue
		}

		result, err := s.calc.Calculate(ctx, op, a, b)
		if err != nil {
			s.reportError(err)
			continue
		}
		fmt.Fprintf(s.out, "\nResult: %s\n\n", output.FormatNumber(result))
	}
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out, "Simple Calculator")
	for _, item := range menuItems {
		fmt.Fprintf(s.out, "%s. %s\n", item.key, item.label)
	}
	fmt.Fprint(s.out, "\nChoose an option (1-6): ")
}
