package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AuditAction represents the type of auditable action.
type AuditAction string

const (
	AuditActionCommand      AuditAction = "command"
	AuditActionCalculate    AuditAction = "calculate"
	AuditActionHistoryWrite AuditAction = "history_write"
	AuditActionHistoryReset AuditAction = "history_reset"
)

// AuditOutcome represents the result of an auditable action.
type AuditOutcome string

const (
	AuditOutcomeSuccess AuditOutcome = "success"
	AuditOutcomeFailure AuditOutcome = "failure"
)

// AuditEvent represents an auditable event.
type AuditEvent struct {
	Action    AuditAction    `json:"action"`
	Actor     string         `json:"actor"`
	Resource  string         `json:"resource"`
	Outcome   AuditOutcome   `json:"outcome"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	RequestID string         `json:"request_id,omitempty"`
}

// AuditLogger writes audit events as JSON lines to a rotated file.
// A nil *AuditLogger is valid and drops every event.
type AuditLogger struct {
	logger *slog.Logger
	closer *lumberjack.Logger
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(auditPath string, maxAgeDays int) (*AuditLogger, error) {
	if auditPath == "" {
		return nil, fmt.Errorf("audit path is required")
	}

	if err := os.MkdirAll(filepath.Dir(auditPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	if maxAgeDays <= 0 {
		maxAgeDays = 365
	}

	lj := &lumberjack.Logger{
		Filename:   auditPath,
		MaxSize:    100,
		MaxBackups: 0, // keep all backups within MaxAge
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	handler := slog.NewJSONHandler(lj, &slog.HandlerOptions{Level: slog.LevelInfo})

	return &AuditLogger{
		logger: slog.New(handler),
		closer: lj,
	}, nil
}

// Log records an audit event.
func (a *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	if a == nil {
		return
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	cc := CommandContextFrom(ctx)
	if event.RequestID == "" && cc != nil {
		event.RequestID = cc.RequestID
	}
	if event.Actor == "" {
		event.Actor = "unknown"
		if cc != nil && cc.User != "" {
			event.Actor = cc.User
		}
	}

	attrs := []slog.Attr{
		slog.String("action", string(event.Action)),
		slog.String("actor", event.Actor),
		slog.String("resource", event.Resource),
		slog.String("outcome", string(event.Outcome)),
		slog.Time("timestamp", event.Timestamp),
	}
	if event.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", event.RequestID))
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	a.logger.LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
}

// LogCommand records a command execution audit event.
func (a *AuditLogger) LogCommand(ctx context.Context, command string, outcome AuditOutcome, metadata map[string]any) {
	a.Log(ctx, AuditEvent{
		Action:   AuditActionCommand,
		Resource: command,
		Outcome:  outcome,
		Metadata: metadata,
	})
}

// LogCalculation records one arithmetic operation.
func (a *AuditLogger) LogCalculation(ctx context.Context, op string, operand1, operand2, result float64, err error) {
	outcome := AuditOutcomeSuccess
	metadata := map[string]any{
		"operand1": operand1,
		"operand2": operand2,
	}
	if err != nil {
		outcome = AuditOutcomeFailure
		metadata["error"] = err.Error()
	} else {
		metadata["result"] = result
	}

	a.Log(ctx, AuditEvent{
		Action:   AuditActionCalculate,
		Resource: op,
		Outcome:  outcome,
		Metadata: metadata,
	})
}

// Close closes the audit logger.
func (a *AuditLogger) Close() error {
	if a != nil && a.closer != nil {
		return a.closer.Close()
	}
	return nil
}
