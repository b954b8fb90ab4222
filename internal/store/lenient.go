package store

import (
	"context"

	"go.uber.org/zap"
)

// Lenient wraps a Store with best-effort semantics: read failures are reported
// as absent and write failures are logged and dropped. Callers cannot assume a
// write persisted. Secret material must go through the strict Store instead.
type Lenient struct {
	store  Store
	logger *zap.Logger
}

// NewLenient creates a best-effort view of s.
func NewLenient(s Store, logger *zap.Logger) *Lenient {
	return &Lenient{store: s, logger: logger}
}

// Get returns the value for key, or "" and false if it is absent or unreadable.
func (l *Lenient) Get(ctx context.Context, key string) (string, bool) {
	v, ok, err := l.store.Get(ctx, key)
	if err != nil {
		l.logger.Warn("store read failed, treating as absent", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, ok
}

// Set stores value under key, logging any failure.
func (l *Lenient) Set(ctx context.Context, key, value string) {
	if err := l.store.Set(ctx, key, value); err != nil {
		l.logger.Error("store write failed", zap.String("key", key), zap.Error(err))
	}
}

// Remove deletes key, logging any failure.
func (l *Lenient) Remove(ctx context.Context, key string) {
	if err := l.store.Remove(ctx, key); err != nil {
		l.logger.Error("store remove failed", zap.String("key", key), zap.Error(err))
	}
}
