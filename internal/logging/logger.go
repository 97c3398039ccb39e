// Package logging defines the structured logger the server writes against.
// The concrete implementation wraps slog; callers never see it directly.
package logging

import "context"

// Logger is a context-aware structured logger. The variadic args are
// alternating key/value pairs, as in slog. Handlers must never be given
// plaintext secrets or key material; callers log identifiers and error
// kinds only.
type Logger interface {
	// Info records normal operation, such as a request served.
	Info(ctx context.Context, msg string, args ...any)

	// Warn records conditions worth an operator's attention, such as a
	// rejected reset token.
	Warn(ctx context.Context, msg string, args ...any)

	// Error records failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds the given key/value pairs to
	// every record.
	With(args ...any) Logger
}
