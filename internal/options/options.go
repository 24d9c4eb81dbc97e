package options

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/AJolly/rtl-433/internal/debounce"
)

type trackerKey struct{}

type loggerKey struct{}

// WithTracker stores the debounce tracker inside the context.
func WithTracker(ctx context.Context, t *debounce.Tracker) context.Context {
	if t == nil {
		return ctx
	}
	return context.WithValue(ctx, trackerKey{}, t)
}

// Tracker retrieves the debounce tracker from context if present.
func Tracker(ctx context.Context) *debounce.Tracker {
	if v := ctx.Value(trackerKey{}); v != nil {
		if t, ok := v.(*debounce.Tracker); ok {
			return t
		}
	}
	return nil
}

// WithLogger stores the diagnostics logger inside the context.
func WithLogger(ctx context.Context, l logrus.FieldLogger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// Logger returns the diagnostics logger from context, or one that discards
// everything.
func Logger(ctx context.Context) logrus.FieldLogger {
	if v := ctx.Value(loggerKey{}); v != nil {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return discard
}

var discard = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}()
