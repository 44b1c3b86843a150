package history

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func TestRecord_MarshalJSON(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	data, err := json.Marshal(NewRecord(OpAdd, 10, 5, 15, ts))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	want := `{"Operation":"+","Number1":10,"Number2":5,"Result":15,"Timestamp":"2025-01-02T03:04:05Z"}`
	if string(data) != want {
		t.Errorf("Marshal() = %s\nwant %s", data, want)
	}
}

func TestRecord_NonFinite(t *testing.T) {
	r := NewRecord(OpDivide, math.Inf(-1), math.NaN(), math.Inf(1), baseTime)
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, s := range []string{`"Number1":"-Infinity"`, `"Number2":"NaN"`, `"Result":"Infinity"`} {
		if !strings.Contains(string(data), s) {
			t.Errorf("Marshal() = %s, missing %s", data, s)
		}
	}

	var got Record
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	assertRecordEqual(t, got, r)
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, r Record)
	}{
		{
			name:  "offset timestamp",
			input: `{"Operation":"-","Number1":10,"Number2":4,"Result":6,"Timestamp":"2025-01-02T03:04:05.123+02:00"}`,
			check: func(t *testing.T, r Record) {
				want := time.Date(2025, 1, 2, 1, 4, 5, 123000000, time.UTC)
				if !r.Timestamp.Equal(want) {
					t.Errorf("Timestamp = %v, want %v", r.Timestamp, want)
				}
			},
		},
		{
			name:  "local timestamp without offset",
			input: `{"Operation":"*","Number1":2,"Number2":3,"Result":6,"Timestamp":"2024-11-05T14:30:00.1234567"}`,
			check: func(t *testing.T, r Record) {
				want := time.Date(2024, 11, 5, 14, 30, 0, 123456700, time.Local)
				if !r.Timestamp.Equal(want) {
					t.Errorf("Timestamp = %v, want %v", r.Timestamp, want)
				}
				if r.Result != 6 {
					t.Errorf("Result = %v, want 6", r.Result)
				}
			},
		},
		{
			name:  "numbers as strings",
			input: `{"Operation":"/","Number1":"Infinity","Number2":2,"Result":"Infinity","Timestamp":"2024-11-05T14:30:00"}`,
			check: func(t *testing.T, r Record) {
				if !math.IsInf(r.Operand1, 1) || !math.IsInf(r.Result, 1) {
					t.Errorf("record = %+v, want infinite operand and result", r)
				}
			},
		},
		{
			name:    "unknown operation",
			input:   `{"Operation":"%","Number1":1,"Number2":1,"Result":0,"Timestamp":"2024-11-05T14:30:00"}`,
			wantErr: true,
		},
		{
			name:    "missing number",
			input:   `{"Operation":"+","Number2":1,"Result":1,"Timestamp":"2024-11-05T14:30:00"}`,
			wantErr: true,
		},
		{
			name:    "bad number string",
			input:   `{"Operation":"+","Number1":"ten","Number2":1,"Result":1,"Timestamp":"2024-11-05T14:30:00"}`,
			wantErr: true,
		},
		{
			name:    "bad timestamp",
			input:   `{"Operation":"+","Number1":1,"Number2":1,"Result":2,"Timestamp":"yesterday"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Record
			err := json.Unmarshal([]byte(tt.input), &r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, r)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	data, err := encodeSnapshot(nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]" {
		t.Errorf("encodeSnapshot(nil) = %s, want []", data)
	}

	records := []Record{
		NewRecord(OpAdd, 5, 5, 10, baseTime.Add(time.Second)),
		NewRecord(OpSubtract, 10, 4, 6, baseTime.Add(2*time.Second)),
	}
	data, err = encodeSnapshot(records)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeSnapshot(data)
	if err != nil {
		t.Fatalf("decodeSnapshot() error = %v", err)
	}
	if len(got) != len(records) {
		t.Fatalf("decodeSnapshot() returned %d records, want %d", len(got), len(records))
	}
	for i := range records {
		assertRecordEqual(t, got[i], records[i])
	}

	if _, err := decodeSnapshot([]byte(`{"Operation":"+"}`)); err == nil {
		t.Error("decodeSnapshot() of an object should fail")
	}
}
