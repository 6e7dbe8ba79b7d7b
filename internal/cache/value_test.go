package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_TTLAndInvalidate(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	loads := 0
	v := New[int](time.Minute, func(context.Context) (int, error) {
		loads++
		return loads, nil
	}).WithClock(func() time.Time { return now })

	ctx := context.Background()
	got, err := v.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, now, v.FetchedAt())

	now = now.Add(30 * time.Second)
	got, _ = v.Get(ctx)
	assert.Equal(t, 1, got, "still fresh")

	now = now.Add(31 * time.Second)
	got, _ = v.Get(ctx)
	assert.Equal(t, 2, got, "expired")

	v.Invalidate()
	assert.True(t, v.FetchedAt().IsZero())
	got, _ = v.Get(ctx)
	assert.Equal(t, 3, got, "invalidated")
}

func TestValue_LoadErrorKeepsState(t *testing.T) {
	fail := false
	v := New[string](0, func(context.Context) (string, error) {
		if fail {
			return "", errors.New("db down")
		}
		return "catalog", nil
	})
	ctx := context.Background()

	got, err := v.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "catalog", got)

	fail = true
	v.Invalidate()
	_, err = v.Get(ctx)
	require.Error(t, err)

	fail = false
	got, err = v.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "catalog", got)
}
