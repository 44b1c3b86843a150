package logger

import (
	"errors"
	"fmt"
	"log/slog"
)

// WithError creates an slog.Attr for an error with its type and cause chain.
func WithError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}

	attrs := []any{
		slog.String("message", err.Error()),
		slog.String("type", fmt.Sprintf("%T", err)),
	}

	var chain []string
	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e.Error())
	}
	if len(chain) > 0 {
		attrs = append(attrs, slog.Any("cause", chain))
	}

	return slog.Group("error", attrs...)
}
