package history

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSQLiteBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calculator_history.db")
	ctx := context.Background()

	s, err := Open(ctx, NewSQLiteBackend(path))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}

	want := []Record{
		NewRecord(OpAdd, 10, 5, 15, baseTime),
		NewRecord(OpDivide, 1, 0.5, 2, baseTime.Add(time.Second)),
		NewRecord(OpSubtract, math.Inf(1), math.Inf(1), math.NaN(), baseTime.Add(2*time.Second)),
	}
	for _, r := range want {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(ctx, NewSQLiteBackend(path))
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got := reopened.Records()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d records, want %d", len(got), len(want))
	}
	for i := range want {
		assertRecordEqual(t, got[i], want[i])
	}
}

func TestSQLiteBackend_Bounded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(ctx, NewSQLiteBackend(path))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	for i := 1; i <= 30; i++ {
		if err := s.Append(ctx, NewRecord(OpAdd, float64(i), 0, float64(i), baseTime.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	stored, err := NewSQLiteBackend(path).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(stored) != MaxHistory {
		t.Fatalf("database has %d records, want %d", len(stored), MaxHistory)
	}
	if stored[0].Operand1 != 6 {
		t.Errorf("oldest stored record = %v, want 6", stored[0].Operand1)
	}
}

func TestSQLiteBackend_Corrupt(t *testing.T) {
	garbage := []byte(strings.Repeat("this is definitely not a sqlite database file\n", 50))

	t.Run("fail", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.db")
		if err := os.WriteFile(path, garbage, 0644); err != nil {
			t.Fatal(err)
		}

		_, err := Open(context.Background(), NewSQLiteBackend(path))
		if !IsCorrupt(err) {
			t.Fatalf("Open() error = %v, want ErrCorrupt", err)
		}
		var pe *PersistenceError
		if !errors.As(err, &pe) {
			t.Errorf("error type = %T, want *PersistenceError", err)
		}
	})

	t.Run("reset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.db")
		if err := os.WriteFile(path, garbage, 0644); err != nil {
			t.Fatal(err)
		}

		backend := NewSQLiteBackend(path)
		backend.now = func() time.Time { return time.Unix(1700000000, 0) }

		ctx := context.Background()
		s, err := Open(ctx, backend, WithCorruptPolicy(CorruptReset))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(path + ".corrupt-1700000000"); err != nil {
			t.Errorf("quarantined database missing: %v", err)
		}
		if err := s.Append(ctx, NewRecord(OpMultiply, 3, 3, 9, baseTime)); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
		if s.Len() != 1 {
			t.Errorf("Len() = %d, want 1", s.Len())
		}
	})
}
