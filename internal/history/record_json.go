package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// localTimeLayouts are accepted for timestamps written without a zone
// offset. Such values are read as local time.
var localTimeLayouts = []string{
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// recordJSON is the on-disk shape of a record.
type recordJSON struct {
	Operation string          `json:"Operation"`
	Number1   json.RawMessage `json:"Number1"`
	Number2   json.RawMessage `json:"Number2"`
	Result    json.RawMessage `json:"Result"`
	Timestamp string          `json:"Timestamp"`
}

// MarshalJSON writes the record with the persisted field names. Non-finite
// numbers are written as the strings "NaN", "Infinity" and "-Infinity".
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Operation: string(r.Operation),
		Number1:   encodeNumber(r.Operand1),
		Number2:   encodeNumber(r.Operand2),
		Result:    encodeNumber(r.Result),
		Timestamp: r.Timestamp.Format(time.RFC3339Nano),
	})
}

// UnmarshalJSON reads a persisted record.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	op := Operation(raw.Operation)
	if !op.IsValid() {
		return fmt.Errorf("unknown operation %q", raw.Operation)
	}

	n1, err := decodeNumber(raw.Number1)
	if err != nil {
		return fmt.Errorf("Number1: %w", err)
	}
	n2, err := decodeNumber(raw.Number2)
	if err != nil {
		return fmt.Errorf("Number2: %w", err)
	}
	res, err := decodeNumber(raw.Result)
	if err != nil {
		return fmt.Errorf("Result: %w", err)
	}
	ts, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return fmt.Errorf("Timestamp: %w", err)
	}

	*r = Record{Operation: op, Operand1: n1, Operand2: n2, Result: res, Timestamp: ts}
	return nil
}

func encodeNumber(f float64) json.RawMessage {
	switch {
	case math.IsNaN(f):
		return json.RawMessage(`"NaN"`)
	case math.IsInf(f, 1):
		return json.RawMessage(`"Infinity"`)
	case math.IsInf(f, -1):
		return json.RawMessage(`"-Infinity"`)
	default:
		return json.RawMessage(strconv.FormatFloat(f, 'g', -1, 64))
	}
}

func decodeNumber(raw json.RawMessage) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing value")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		default:
			return 0, fmt.Errorf("invalid number %q", s)
		}
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// decodeSnapshot parses a persisted snapshot. Empty input and a JSON null
// both decode to an empty log.
func decodeSnapshot(data []byte) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// encodeSnapshot serializes the full log.
func encodeSnapshot(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return json.Marshal(records)
}
