package history

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var baseTime = time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)

func openTestStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calculator_history.json")
	s, err := Open(context.Background(), NewFileBackend(path), opts...)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestOpen_MissingFile(t *testing.T) {
	s, path := openTestStore(t)

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Open should not create the history file")
	}
}

func TestStore_AppendBounded(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"one", 1, 1},
		{"below capacity", 24, 24},
		{"at capacity", 25, 25},
		{"one over", 26, 25},
		{"far over", 60, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := openTestStore(t)
			ctx := context.Background()

			for i := 1; i <= tt.n; i++ {
				r := NewRecord(OpAdd, float64(i), 0, float64(i), baseTime.Add(time.Duration(i)*time.Second))
				if err := s.Append(ctx, r); err != nil {
					t.Fatalf("Append(%d) error = %v", i, err)
				}
				if s.Len() > MaxHistory {
					t.Fatalf("Len() = %d after append %d, exceeds %d", s.Len(), i, MaxHistory)
				}
			}

			if s.Len() != tt.want {
				t.Fatalf("Len() = %d, want %d", s.Len(), tt.want)
			}

			records := s.Records()
			oldest := tt.n - tt.want + 1
			if records[0].Operand1 != float64(oldest) {
				t.Errorf("oldest record = %v, want operation %d", records[0].Operand1, oldest)
			}
			if last := records[len(records)-1]; last.Operand1 != float64(tt.n) {
				t.Errorf("newest record = %v, want operation %d", last.Operand1, tt.n)
			}
			for i := 1; i < len(records); i++ {
				if records[i].Operand1 != records[i-1].Operand1+1 {
					t.Fatalf("records out of order at %d: %v after %v", i, records[i].Operand1, records[i-1].Operand1)
				}
			}
		})
	}
}

func TestStore_PersistsEveryAppend(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 30; i++ {
		r := NewRecord(OpMultiply, float64(i), 2, float64(i*2), baseTime.Add(time.Duration(i)*time.Minute))
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}

		onDisk, err := NewFileBackend(path).Load(ctx)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if len(onDisk) != s.Len() {
			t.Fatalf("after append %d: file has %d records, memory has %d", i, len(onDisk), s.Len())
		}
	}
}

func TestStore_Reload(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	want := []Record{
		NewRecord(OpAdd, 10, 5, 15, baseTime),
		NewRecord(OpSubtract, -2.5, 0.25, -2.75, baseTime.Add(time.Second)),
		NewRecord(OpDivide, 1, 3, 1.0/3.0, baseTime.Add(2*time.Second)),
		NewRecord(OpMultiply, 1e300, 1e300, math.Inf(1), baseTime.Add(3*time.Second)),
		NewRecord(OpSubtract, math.Inf(1), math.Inf(1), math.NaN(), baseTime.Add(4*time.Second)),
	}
	for _, r := range want {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	s.Close()

	reopened, err := Open(ctx, NewFileBackend(path))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
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

func TestOpen_TruncatesOversizedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	ctx := context.Background()

	var records []Record
	for i := 1; i <= 40; i++ {
		records = append(records, NewRecord(OpAdd, float64(i), 1, float64(i+1), baseTime.Add(time.Duration(i)*time.Second)))
	}
	if err := NewFileBackend(path).Save(ctx, records); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	s, err := Open(ctx, NewFileBackend(path))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.Len() != MaxHistory {
		t.Fatalf("Len() = %d, want %d", s.Len(), MaxHistory)
	}
	if first := s.Records()[0]; first.Operand1 != 16 {
		t.Errorf("oldest kept record = %v, want 16", first.Operand1)
	}
}

func TestOpen_CorruptFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(context.Background(), NewFileBackend(path))
	if err == nil {
		t.Fatal("Open() should fail on a corrupt store")
	}

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("error type = %T, want *PersistenceError", err)
	}
	if pe.Op != "load" || pe.Path != path {
		t.Errorf("PersistenceError = {%q, %q}, want {load, %q}", pe.Op, pe.Path, path)
	}
	if !IsCorrupt(err) {
		t.Errorf("IsCorrupt(%v) = false, want true", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "{not json" {
		t.Error("corrupt store should be left untouched with the fail policy")
	}
}

func TestOpen_CorruptReset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	if err := os.WriteFile(path, []byte(`[{"Operation":"%"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	backend := NewFileBackend(path)
	backend.now = func() time.Time { return time.Unix(1700000000, 0) }

	ctx := context.Background()
	s, err := Open(ctx, backend, WithCorruptPolicy(CorruptReset))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}

	moved := path + ".corrupt-1700000000"
	data, err := os.ReadFile(moved)
	if err != nil {
		t.Fatalf("quarantined file missing: %v", err)
	}
	if string(data) != `[{"Operation":"%"}]` {
		t.Errorf("quarantined content = %q", data)
	}

	if err := s.Append(ctx, NewRecord(OpAdd, 1, 1, 2, baseTime)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("history file not recreated: %v", err)
	}
}

func TestFileBackend_QuarantineSameSecond(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")

	backend := NewFileBackend(path)
	backend.now = func() time.Time { return time.Unix(1700000000, 0) }

	ctx := context.Background()
	var moved []string
	for _, content := range []string{"first", "second", "third"} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		dest, err := backend.Quarantine(ctx)
		if err != nil {
			t.Fatalf("Quarantine() error = %v", err)
		}
		moved = append(moved, dest)
	}

	want := []string{
		path + ".corrupt-1700000000",
		path + ".corrupt-1700000000-1",
		path + ".corrupt-1700000000-2",
	}
	for i, dest := range moved {
		if dest != want[i] {
			t.Errorf("quarantine %d = %q, want %q", i, dest, want[i])
		}
	}

	data, err := os.ReadFile(want[0])
	if err != nil || string(data) != "first" {
		t.Errorf("first quarantined file = %q, %v; want it preserved", data, err)
	}
}

func TestOpen_EmptyFile(t *testing.T) {
	for _, content := range []string{"", "  \n", "null", "[]"} {
		path := filepath.Join(t.TempDir(), "history.json")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		s, err := Open(context.Background(), NewFileBackend(path))
		if err != nil {
			t.Fatalf("Open(%q) error = %v", content, err)
		}
		if s.Len() != 0 {
			t.Errorf("Open(%q) Len() = %d, want 0", content, s.Len())
		}
		s.Close()
	}
}

func TestStore_ListByRecency(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	older := NewRecord(OpAdd, 5, 5, 10, baseTime.Add(1*time.Second))
	newer := NewRecord(OpSubtract, 10, 4, 6, baseTime.Add(2*time.Second))

	// Insert out of timestamp order to show the listing ignores storage order.
	if err := s.Append(ctx, newer); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(ctx, older); err != nil {
		t.Fatal(err)
	}

	got := s.ListByRecency()
	if len(got) != 2 {
		t.Fatalf("ListByRecency() returned %d records, want 2", len(got))
	}
	if got[0].Operation != OpSubtract || got[1].Operation != OpAdd {
		t.Errorf("ListByRecency() = [%s, %s], want [-, +]", got[0].Operation, got[1].Operation)
	}

	stored := s.Records()
	if stored[0].Operation != OpSubtract {
		t.Error("ListByRecency must not reorder the stored log")
	}
}

func TestStore_ListByRecencyTies(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := s.Append(ctx, NewRecord(OpAdd, float64(i), 0, float64(i), baseTime)); err != nil {
			t.Fatal(err)
		}
	}

	got := s.ListByRecency()
	for i, want := range []float64{3, 2, 1} {
		if got[i].Operand1 != want {
			t.Errorf("ListByRecency()[%d] = %v, want %v", i, got[i].Operand1, want)
		}
	}
}

func TestStore_AppendWriteFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory at the target path makes the final rename fail.
	path := filepath.Join(dir, "history.json")
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "keep"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	backend := &failingBackend{FileBackend: NewFileBackend(filepath.Join(dir, "ok.json"))}
	ctx := context.Background()
	s, err := Open(ctx, backend)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	backend.failSave = true
	err = s.Append(ctx, NewRecord(OpAdd, 1, 2, 3, baseTime))
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("Append() error = %v, want ErrWrite", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (record kept in memory)", s.Len())
	}

	backend.failSave = false
	if err := s.Append(ctx, NewRecord(OpAdd, 2, 2, 4, baseTime.Add(time.Second))); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	onDisk, err := backend.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(onDisk) != 2 {
		t.Errorf("file has %d records after recovery, want 2", len(onDisk))
	}

	// The real file backend fails the same way when the target is a directory.
	dirBackend := NewFileBackend(path)
	if err := dirBackend.Save(ctx, s.Records()); !errors.Is(err, ErrWrite) {
		t.Errorf("Save() onto a directory error = %v, want ErrWrite", err)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "history.json.*.tmp"))
	if len(matches) != 0 {
		t.Errorf("temporary files left behind: %v", matches)
	}
}

func TestStore_AppendAfterClose(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	err := s.Append(context.Background(), NewRecord(OpAdd, 1, 1, 2, baseTime))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Append() after Close error = %v, want ErrClosed", err)
	}
}

func TestStore_WithCapacity(t *testing.T) {
	s, _ := openTestStore(t, withCapacity(3))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := s.Append(ctx, NewRecord(OpAdd, float64(i), 0, float64(i), baseTime)); err != nil {
			t.Fatal(err)
		}
	}
	records := s.Records()
	if len(records) != 3 || records[0].Operand1 != 3 {
		t.Errorf("Records() = %v, want operations 3..5", records)
	}
}

type failingBackend struct {
	*FileBackend
	failSave bool
}

func (b *failingBackend) Save(ctx context.Context, records []Record) error {
	if b.failSave {
		return persistenceErr("save", b.Path(), ErrWrite, errors.New("disk full"))
	}
	return b.FileBackend.Save(ctx, records)
}

func assertRecordEqual(t *testing.T, got, want Record) {
	t.Helper()
	if got.Operation != want.Operation ||
		!sameFloat(got.Operand1, want.Operand1) ||
		!sameFloat(got.Operand2, want.Operand2) ||
		!sameFloat(got.Result, want.Result) ||
		!got.Timestamp.Equal(want.Timestamp) {
		t.Errorf("record = %+v, want %+v", got, want)
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}
