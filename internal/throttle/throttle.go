// Package throttle memoizes idempotent side-effecting operations per key for
// a bounded time window.
//
// Callers wrap operations like "auto-verify this contact" that are safe to
// repeat but wasteful to repeat often. Instances are injectable and
// owner-scoped so tests never share state through a process-wide map.
// Concurrent callers racing on one key are benign: the worst case is one
// duplicate run of an idempotent operation.
package throttle

import (
	"context"
	"log/slog"
	"time"
)

// Store records throttle marks.
// Error Contract:
// - MarkIfAbsent returns won=true when no live mark existed and this call
//   claimed the key; infrastructure failures return an error with won=false
type Store interface {
	MarkIfAbsent(ctx context.Context, key string, ttl time.Duration) (won bool, err error)
}

type Option func(*Throttle)

const defaultWindow = 10 * time.Minute

// Throttle runs an operation at most once per key per window.
type Throttle struct {
	store  Store
	window time.Duration
	logger *slog.Logger
}

func New(store Store, logger *slog.Logger, opts ...Option) *Throttle {
	t := &Throttle{
		store:  store,
		window: defaultWindow,
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.window <= 0 {
		t.window = defaultWindow
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t
}

// WithWindow sets the throttle window. Zero or negative keeps the default.
func WithWindow(window time.Duration) Option {
	return func(t *Throttle) {
		if window > 0 {
			t.window = window
		}
	}
}

// Do runs op unless the key was claimed within the window. The returned ran
// flag reports whether op executed on this call.
//
// A store failure does not block the operation: the throttle exists to save
// work, not to gate correctness, so on infrastructure errors Do logs and
// runs op anyway.
func (t *Throttle) Do(ctx context.Context, key string, op func(context.Context) error) (ran bool, err error) {
	won, err := t.store.MarkIfAbsent(ctx, key, t.window)
	if err != nil {
		t.logger.WarnContext(ctx, "throttle_store_failed",
			"key", key,
			"error", err,
		)
		won = true
	}
	if !won {
		return false, nil
	}
	return true, op(ctx)
}
