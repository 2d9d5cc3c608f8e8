package cache

import "context"

// Backend is the method set shared by every cache in this package.
type Backend[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V) error
}

// Tiered combines a local cache with a shared one.
type Tiered[V any] struct {
	local  Backend[V]
	shared Backend[V]
}

// NewTiered creates a cache reading local first and shared second.
func NewTiered[V any](local, shared Backend[V]) *Tiered[V] {
	return &Tiered[V]{local: local, shared: shared}
}

// Get returns the local entry if present, otherwise the shared entry, which
// is then copied into the local cache. A failed backfill is not an error.
func (t *Tiered[V]) Get(ctx context.Context, key string) (V, bool, error) {
	if v, ok, err := t.local.Get(ctx, key); err == nil && ok {
		return v, true, nil
	}

	v, ok, err := t.shared.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	_ = t.local.Set(ctx, key, v)
	return v, true, nil
}

// Set writes value to both tiers. The local write happens even if the shared one fails.
func (t *Tiered[V]) Set(ctx context.Context, key string, value V) error {
	localErr := t.local.Set(ctx, key, value)
	if err := t.shared.Set(ctx, key, value); err != nil {
		return err
	}
	return localErr
}
