package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"calc/internal/history"

	"github.com/charmbracelet/lipgloss"
)

// TimestampLayout is the display layout for record timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

const rule = "----------------------------------------"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	ruleStyle   = lipgloss.NewStyle().Faint(true)
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	resultStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// FormatRecord renders r as "<time> | <a> <op> <b> = <result>".
func FormatRecord(r history.Record) string {
	return fmt.Sprintf("%s | %s %s %s = %s",
		r.Timestamp.Format(TimestampLayout),
		FormatNumber(r.Operand1),
		r.Operation,
		FormatNumber(r.Operand2),
		FormatNumber(r.Result),
	)
}

// HistoryView is a recency-ordered history listing.
type HistoryView struct {
	Records []history.Record
}

// NewHistoryView wraps records, which should already be ordered newest first.
func NewHistoryView(records []history.Record) HistoryView {
	return HistoryView{Records: records}
}

// Render writes the listing between the header and footer rules.
func (v HistoryView) Render(w io.Writer, color bool) error {
	var b strings.Builder

	header := fmt.Sprintf("Calculation History (Last %d operations):", history.MaxHistory)
	top, bottom := rule, rule
	if color {
		header = headerStyle.Render(header)
		top = ruleStyle.Render(rule)
		bottom = ruleStyle.Render(rule)
	}

	b.WriteString("\n" + header + "\n")
	b.WriteString(top + "\n")
	for _, r := range v.Records {
		if color {
			b.WriteString(timeStyle.Render(r.Timestamp.Format(TimestampLayout)))
			fmt.Fprintf(&b, " | %s %s %s = %s\n",
				FormatNumber(r.Operand1),
				r.Operation,
				FormatNumber(r.Operand2),
				resultStyle.Render(FormatNumber(r.Result)),
			)
			continue
		}
		b.WriteString(FormatRecord(r) + "\n")
	}
	b.WriteString(bottom + "\n\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// QuietLines returns one result per record.
func (v HistoryView) QuietLines() []string {
	lines := make([]string, len(v.Records))
	for i, r := range v.Records {
		lines[i] = FormatNumber(r.Result)
	}
	return lines
}

func (v HistoryView) MarshalJSON() ([]byte, error) {
	if v.Records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Records)
}

func (v HistoryView) MarshalYAML() (any, error) {
	if v.Records == nil {
		return []history.Record{}, nil
	}
	return v.Records, nil
}

// ResultView is the outcome of a single calculation.
type ResultView struct {
	history.Record `yaml:",inline"`
}

// NewResultView wraps the record produced by a calculation.
func NewResultView(r history.Record) ResultView {
	return ResultView{Record: r}
}

// Render writes the result in the interactive "Result: <r>" form.
func (v ResultView) Render(w io.Writer, color bool) error {
	result := FormatNumber(v.Result)
	if color {
		result = resultStyle.Render(result)
	}
	_, err := fmt.Fprintf(w, "Result: %s\n", result)
	return err
}

// QuietLines returns the bare result.
func (v ResultView) QuietLines() []string {
	return []string{FormatNumber(v.Result)}
}
