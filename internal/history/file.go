package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileBackend stores the log as a JSON array in a single file.
type FileBackend struct {
	path string
	now  func() time.Time
}

// NewFileBackend returns a backend for the JSON file at path. The file is
// created on the first save.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path, now: time.Now}
}

// Path returns the JSON file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads and parses the snapshot file.
func (b *FileBackend) Load(ctx context.Context) ([]Record, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, persistenceErr("load", b.path, ErrRead, err)
	}

	records, err := decodeSnapshot(data)
	if err != nil {
		return nil, persistenceErr("load", b.path, ErrCorrupt, err)
	}
	return records, nil
}

// Save writes records to a temporary file in the same directory and renames
// it over the snapshot, so readers see either the old or the new snapshot.
func (b *FileBackend) Save(ctx context.Context, records []Record) error {
	data, err := encodeSnapshot(records)
	if err != nil {
		return persistenceErr("save", b.path, ErrWrite, err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return persistenceErr("save", b.path, ErrWrite, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return persistenceErr("save", b.path, ErrWrite, err)
	}
	tmpPath := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		os.Remove(tmpPath)
		return persistenceErr("save", b.path, ErrWrite, err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return persistenceErr("save", b.path, ErrWrite, err)
	}

	if err := os.Rename(tmpPath, b.path); err != nil {
		os.Remove(tmpPath)
		return persistenceErr("save", b.path, ErrWrite, err)
	}
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Quarantine renames the snapshot to <path>.corrupt-<unix seconds>.
func (b *FileBackend) Quarantine(ctx context.Context) (string, error) {
	dest := quarantinePath(b.path, b.now())
	if err := os.Rename(b.path, dest); err != nil {
		return "", persistenceErr("reset", b.path, ErrWrite, err)
	}
	return dest, nil
}

// quarantinePath returns <path>.corrupt-<unix seconds>, adding a -N suffix
// when an earlier quarantine from the same second is still there.
func quarantinePath(path string, now time.Time) string {
	base := fmt.Sprintf("%s.corrupt-%d", path, now.Unix())
	dest := base
	for n := 1; ; n++ {
		if _, err := os.Lstat(dest); err != nil {
			return dest
		}
		dest = fmt.Sprintf("%s-%d", base, n)
	}
}

// Close is a no-op for the file backend.
func (b *FileBackend) Close() error {
	return nil
}
