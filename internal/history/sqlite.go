package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsTable keeps golang-migrate's bookkeeping apart from our tables.
const migrationsTable = "calc_schema_migrations"

// SQLite result codes that mean the file is not a usable database.
const (
	sqliteCorrupt = 11
	sqliteNotADB  = 26
)

// SQLiteBackend stores the log in a SQLite database. Every save replaces
// the table contents inside one transaction.
type SQLiteBackend struct {
	path string
	db   *sql.DB
	now  func() time.Time
}

// NewSQLiteBackend returns a backend for the database at path. The database
// is opened and migrated on the first Load.
func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path, now: time.Now}
}

// Path returns the database file path.
func (b *SQLiteBackend) Path() string {
	return b.path
}

func (b *SQLiteBackend) open(ctx context.Context) error {
	if b.db != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	return nil
}

// migrateUp applies the embedded schema migrations.
func migrateUp(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// m.Close would close db as well, so only the source is released.
	defer source.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Load opens the database if needed and reads all records in insertion order.
func (b *SQLiteBackend) Load(ctx context.Context) ([]Record, error) {
	if err := b.open(ctx); err != nil {
		return nil, b.classify("load", err)
	}

	rows, err := b.db.QueryContext(ctx,
		"SELECT operation, number1, number2, result, timestamp FROM calculations ORDER BY seq")
	if err != nil {
		return nil, b.classify("load", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			op         string
			n1, n2, rs sql.NullFloat64
			ts         string
		)
		if err := rows.Scan(&op, &n1, &n2, &rs, &ts); err != nil {
			return nil, b.classify("load", err)
		}

		parsed, err := parseTimestamp(ts)
		if err != nil {
			return nil, persistenceErr("load", b.path, ErrCorrupt, err)
		}
		operation := Operation(op)
		if !operation.IsValid() {
			return nil, persistenceErr("load", b.path, ErrCorrupt, fmt.Errorf("unknown operation %q", op))
		}

		records = append(records, Record{
			Operation: operation,
			Operand1:  fromNull(n1),
			Operand2:  fromNull(n2),
			Result:    fromNull(rs),
			Timestamp: parsed,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, b.classify("load", err)
	}
	return records, nil
}

// Save replaces the stored snapshot with records.
func (b *SQLiteBackend) Save(ctx context.Context, records []Record) error {
	if err := b.open(ctx); err != nil {
		return persistenceErr("save", b.path, ErrWrite, err)
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return persistenceErr("save", b.path, ErrWrite, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM calculations"); err != nil {
		return persistenceErr("save", b.path, ErrWrite, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO calculations (operation, number1, number2, result, timestamp) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return persistenceErr("save", b.path, ErrWrite, err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			string(r.Operation),
			toNull(r.Operand1),
			toNull(r.Operand2),
			toNull(r.Result),
			r.Timestamp.Format(time.RFC3339Nano),
		); err != nil {
			return persistenceErr("save", b.path, ErrWrite, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistenceErr("save", b.path, ErrWrite, err)
	}
	return nil
}

// Quarantine closes the database and renames the file to
// <path>.corrupt-<unix seconds>. WAL side files are removed.
func (b *SQLiteBackend) Quarantine(ctx context.Context) (string, error) {
	if b.db != nil {
		b.db.Close()
		b.db = nil
	}

	dest := quarantinePath(b.path, b.now())
	if err := os.Rename(b.path, dest); err != nil {
		return "", persistenceErr("reset", b.path, ErrWrite, err)
	}
	os.Remove(b.path + "-wal")
	os.Remove(b.path + "-shm")
	return dest, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// classify maps driver errors to the history error kinds.
func (b *SQLiteBackend) classify(op string, err error) error {
	if isCorruptDB(err) {
		return persistenceErr(op, b.path, ErrCorrupt, err)
	}
	return persistenceErr(op, b.path, ErrRead, err)
}

func isCorruptDB(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqliteCorrupt, sqliteNotADB:
			return true
		}
	}
	// golang-migrate flattens driver errors into strings.
	msg := err.Error()
	return strings.Contains(msg, "file is not a database") ||
		strings.Contains(msg, "database disk image is malformed")
}

// NaN cannot be stored in a REAL column; it is kept as NULL.
func toNull(f float64) sql.NullFloat64 {
	if math.IsNaN(f) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

func fromNull(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}
