// Package calc performs the four arithmetic operations and records every
// successful calculation in the history store.
package calc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"calc/internal/cli/output"
	"calc/internal/history"
	"calc/internal/logger"
)

var (
	// ErrDivisionByZero is returned by Divide when the divisor is exactly zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrUnknownOperation is returned by Calculate for an unsupported operator.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Recorder is the part of the history store the engine depends on.
type Recorder interface {
	Append(ctx context.Context, r history.Record) error
	ListByRecency() []history.Record
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithAuditLogger records every calculation in the audit log.
func WithAuditLogger(a *logger.AuditLogger) Option {
	return func(e *Engine) {
		e.audit = a
	}
}

// WithColor styles the history listing.
func WithColor(color bool) Option {
	return func(e *Engine) {
		e.color.Store(color)
	}
}

// Engine computes results and appends one record per successful operation.
type Engine struct {
	store Recorder
	now   func() time.Time
	log   *logger.Logger
	audit *logger.AuditLogger
	color atomic.Bool
}

// New creates an engine that records into store.
func New(store Recorder, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
		log:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Add returns a+b.
func (e *Engine) Add(ctx context.Context, a, b float64) (float64, error) {
	return e.record(ctx, history.OpAdd, a, b, a+b)
}

// Subtract returns a-b.
func (e *Engine) Subtract(ctx context.Context, a, b float64) (float64, error) {
	return e.record(ctx, history.OpSubtract, a, b, a-b)
}

// Multiply returns a*b.
func (e *Engine) Multiply(ctx context.Context, a, b float64) (float64, error) {
	return e.record(ctx, history.OpMultiply, a, b, a*b)
}

// Divide returns a/b. A divisor of exactly zero (either sign) fails with
// ErrDivisionByZero and leaves the history untouched.
func (e *Engine) Divide(ctx context.Context, a, b float64) (float64, error) {
	if b == 0 {
		e.log.Debug("division by zero rejected", "operand1", a)
		e.audit.LogCalculation(ctx, history.OpDivide.String(), a, b, 0, ErrDivisionByZero)
		return 0, ErrDivisionByZero
	}
	return e.record(ctx, history.OpDivide, a, b, a/b)
}

// Calculate dispatches to the operation named by op.
func (e *Engine) Calculate(ctx context.Context, op history.Operation, a, b float64) (float64, error) {
	switch op {
	case history.OpAdd:
		return e.Add(ctx, a, b)
	case history.OpSubtract:
		return e.Subtract(ctx, a, b)
	case history.OpMultiply:
		return e.Multiply(ctx, a, b)
	case history.OpDivide:
		return e.Divide(ctx, a, b)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, string(op))
	}
}

// record appends the completed calculation. The result is returned even
// when the history write fails so callers can still show it.
func (e *Engine) record(ctx context.Context, op history.Operation, a, b, result float64) (float64, error) {
	r := history.NewRecord(op, a, b, result, e.now())

	e.log.Debug("calculation",
		"operation", op.String(),
		"operand1", a,
		"operand2", b,
		"result", result,
	)

	if err := e.store.Append(ctx, r); err != nil {
		e.audit.LogCalculation(ctx, op.String(), a, b, result, err)
		return result, err
	}
	e.audit.LogCalculation(ctx, op.String(), a, b, result, nil)
	return result, nil
}

// History returns the log newest first.
func (e *Engine) History() []history.Record {
	return e.store.ListByRecency()
}

// SetColor switches history styling on or off. It is safe to call while
// another goroutine is rendering.
func (e *Engine) SetColor(color bool) {
	e.color.Store(color)
}

// ShowHistory writes the history listing, newest first, to w.
func (e *Engine) ShowHistory(w io.Writer) error {
	return output.NewHistoryView(e.History()).Render(w, e.color.Load())
}
