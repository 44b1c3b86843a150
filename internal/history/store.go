package history

import (
	"context"
	"errors"
	"sort"
	"sync"

	"calc/internal/logger"
)

// Backend persists full snapshots of the log.
type Backend interface {
	// Load returns the persisted records in insertion order. A missing
	// store yields an empty slice and no error.
	Load(ctx context.Context) ([]Record, error)

	// Save replaces the persisted snapshot with records.
	Save(ctx context.Context, records []Record) error

	// Quarantine moves an unreadable store out of the way and returns the
	// new location. The next Load starts from an empty store.
	Quarantine(ctx context.Context) (string, error)

	// Path is the location of the backing store.
	Path() string

	// Close releases backend resources.
	Close() error
}

// CorruptPolicy decides how Open reacts to an unparseable store.
type CorruptPolicy int

const (
	// CorruptFail makes Open return the *PersistenceError.
	CorruptFail CorruptPolicy = iota
	// CorruptReset quarantines the store and starts with an empty log.
	CorruptReset
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithAuditLogger records history writes and resets in the audit log.
func WithAuditLogger(a *logger.AuditLogger) Option {
	return func(s *Store) {
		s.audit = a
	}
}

// WithCorruptPolicy sets the policy for unparseable stores.
func WithCorruptPolicy(p CorruptPolicy) Option {
	return func(s *Store) {
		s.policy = p
	}
}

// withCapacity overrides MaxHistory for tests.
func withCapacity(n int) Option {
	return func(s *Store) {
		s.capacity = n
	}
}

// Store owns the bounded history log and keeps its backend in sync.
type Store struct {
	mu       sync.Mutex
	backend  Backend
	records  []Record
	capacity int
	policy   CorruptPolicy
	log      *logger.Logger
	audit    *logger.AuditLogger
	closed   bool
}

// Open loads the log from backend. A missing store gives an empty log. An
// unparseable store fails with a *PersistenceError unless the store was
// opened with CorruptReset.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Store, error) {
	s := &Store{
		backend:  backend,
		capacity: MaxHistory,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	records, err := backend.Load(ctx)
	if err != nil {
		if !IsCorrupt(err) || s.policy != CorruptReset {
			return nil, err
		}

		moved, qerr := backend.Quarantine(ctx)
		if qerr != nil {
			return nil, errors.Join(err, qerr)
		}
		s.log.Warn("history store was corrupt, starting with empty history",
			"path", backend.Path(),
			"moved_to", moved,
			logger.WithError(err),
		)
		s.audit.Log(ctx, logger.AuditEvent{
			Action:   logger.AuditActionHistoryReset,
			Resource: backend.Path(),
			Outcome:  logger.AuditOutcomeSuccess,
			Metadata: map[string]any{"moved_to": moved},
		})

		if records, err = backend.Load(ctx); err != nil {
			return nil, err
		}
	}

	// A store written with a larger capacity keeps only its newest entries.
	if len(records) > s.capacity {
		records = records[len(records)-s.capacity:]
	}
	s.records = records

	s.log.Debug("history loaded", "path", backend.Path(), "records", len(records))
	return s, nil
}

// Append adds r at the tail of the log, evicting the oldest record when
// the log is full, then rewrites the backing store. The in-memory log keeps
// r even when the write fails; the error is returned and the next append
// writes the complete snapshot again.
func (s *Store) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &PersistenceError{Op: "save", Path: s.backend.Path(), Err: ErrClosed}
	}

	s.records = append(s.records, r)
	if len(s.records) > s.capacity {
		evicted := s.records[0]
		s.records = append(s.records[:0:0], s.records[1:]...)
		s.log.Debug("history full, evicted oldest record",
			"operation", evicted.Operation.String(),
			"timestamp", evicted.Timestamp,
		)
	}

	if err := s.backend.Save(ctx, s.records); err != nil {
		s.log.Error("failed to persist history",
			"path", s.backend.Path(),
			logger.WithError(err),
		)
		s.audit.Log(ctx, logger.AuditEvent{
			Action:   logger.AuditActionHistoryWrite,
			Resource: s.backend.Path(),
			Outcome:  logger.AuditOutcomeFailure,
			Metadata: map[string]any{"error": err.Error()},
		})
		return err
	}
	return nil
}

// Records returns a copy of the log in insertion order, oldest first.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// ListByRecency returns the records sorted by timestamp, newest first.
// Records with equal timestamps list the later insertion first.
func (s *Store) ListByRecency() []Record {
	s.mu.Lock()
	out := make([]Record, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Len returns the number of records in the log.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Path returns the location of the backing store.
func (s *Store) Path() string {
	return s.backend.Path()
}

// Close releases the backend. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.Close()
}
