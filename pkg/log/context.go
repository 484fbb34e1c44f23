package log

import (
	"context"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithUser tags the context logger with the authenticated actor, so every
// line logged further down the request names who made it.
func WithUser(ctx context.Context, userID, email string) context.Context {
	lc := Ctx(ctx).With().Str(FieldUserID, userID)
	if email != "" {
		lc = lc.Str(FieldUserEmail, email)
	}
	return WithLogger(ctx, lc.Logger())
}

// Ctx returns the request logger, or the global one outside a request.
func Ctx(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return l
	}
	return L()
}
