package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenBackend fails every call.
type brokenBackend[V any] struct{}

func (brokenBackend[V]) Get(context.Context, string) (V, bool, error) {
	var zero V
	return zero, false, errors.New("backend down")
}

func (brokenBackend[V]) Set(context.Context, string, V) error {
	return errors.New("backend down")
}

func TestTiered_BackfillsLocal(t *testing.T) {
	ctx := context.Background()
	local := NewMemory[string](10, time.Hour)
	shared := NewMemory[string](10, time.Hour)
	tiered := NewTiered[string](local, shared)

	require.NoError(t, shared.Set(ctx, "k", "v"))
	v, ok, err := tiered.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	v, ok, _ = local.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestTiered_SetWritesBoth(t *testing.T) {
	ctx := context.Background()
	local := NewMemory[string](10, time.Hour)
	shared := NewMemory[string](10, time.Hour)
	tiered := NewTiered[string](local, shared)

	require.NoError(t, tiered.Set(ctx, "k", "v"))
	assert.Equal(t, 1, local.Len())
	assert.Equal(t, 1, shared.Len())

	_, ok, err := tiered.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTiered_SharedFailure(t *testing.T) {
	ctx := context.Background()
	local := NewMemory[string](10, time.Hour)
	tiered := NewTiered[string](local, brokenBackend[string]{})

	assert.Error(t, tiered.Set(ctx, "k", "v"))
	v, ok, err := tiered.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok, err = tiered.Get(ctx, "other")
	assert.Error(t, err)
	assert.False(t, ok)
}
