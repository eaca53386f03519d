package ipmark

import (
	"context"
)

// Logger records warning events emitted during decoration, such as
// per-address metadata lookup failures.
//
// Implementations should be safe for concurrent use when shared across
// processing contexts.
//
// The interface intentionally mirrors slog's WarnContext signature, so
// *slog.Logger can be used directly without an adapter.
type Logger interface {
	WarnContext(ctx context.Context, msg string, args ...any)
}

// noopLogger is the default Logger implementation when logging is not
// explicitly configured.
type noopLogger struct{}

func (noopLogger) WarnContext(context.Context, string, ...any) {}
