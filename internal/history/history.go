// Package history keeps the bounded log of completed calculations and the
// backing store it is persisted to.
//
// The log holds at most MaxHistory records in insertion order. Appending a
// record past capacity evicts the oldest one, and every append rewrites the
// whole snapshot to the backend before returning.
package history

import (
	"errors"
	"fmt"
	"time"
)

// MaxHistory is the maximum number of records kept in the log.
const MaxHistory = 25

// Operation is the arithmetic operator of a record.
type Operation string

const (
	OpAdd      Operation = "+"
	OpSubtract Operation = "-"
	OpMultiply Operation = "*"
	OpDivide   Operation = "/"
)

// IsValid reports whether op is one of the four supported operators.
func (op Operation) IsValid() bool {
	switch op {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	default:
		return false
	}
}

// String returns the operator symbol.
func (op Operation) String() string {
	return string(op)
}

// Record is one completed calculation. Records are never modified after creation.
type Record struct {
	Operation Operation `yaml:"operation"`
	Operand1  float64   `yaml:"number1"`
	Operand2  float64   `yaml:"number2"`
	Result    float64   `yaml:"result"`
	Timestamp time.Time `yaml:"timestamp"`
}

// NewRecord builds a record stamped with at.
func NewRecord(op Operation, operand1, operand2, result float64, at time.Time) Record {
	return Record{
		Operation: op,
		Operand1:  operand1,
		Operand2:  operand2,
		Result:    result,
		Timestamp: at,
	}
}

// Errors returned by the store and its backends. They are always wrapped
// in a *PersistenceError.
var (
	// ErrCorrupt means the backing store exists but cannot be parsed.
	ErrCorrupt = errors.New("history store is corrupt")

	// ErrRead means the backing store could not be read.
	ErrRead = errors.New("history store could not be read")

	// ErrWrite means the snapshot could not be written.
	ErrWrite = errors.New("history store could not be written")

	// ErrClosed is returned when using a store after Close.
	ErrClosed = errors.New("history store is closed")
)

// PersistenceError describes a failed load or save of the backing store.
type PersistenceError struct {
	Op   string // "load", "save" or "reset"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsCorrupt reports whether err was caused by an unparseable store.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}

func persistenceErr(op, path string, kind, cause error) error {
	if cause == nil {
		return &PersistenceError{Op: op, Path: path, Err: kind}
	}
	return &PersistenceError{Op: op, Path: path, Err: fmt.Errorf("%w: %v", kind, cause)}
}
