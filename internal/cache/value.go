package cache

import (
	"context"
	"sync"
	"time"
)

// Loader fetches a fresh value.
type Loader[T any] func(ctx context.Context) (T, error)

// Value is a time-boxed cached value: (value, fetchedAt, ttl). It reloads lazily on
// the first Get after expiry or after Invalidate. Safe for concurrent use.
type Value[T any] struct {
	mu        sync.Mutex
	load      Loader[T]
	ttl       time.Duration
	now       func() time.Time
	value     T
	fetchedAt time.Time
	valid     bool
}

// New returns an empty cache. A ttl <= 0 caches until Invalidate.
func New[T any](ttl time.Duration, load Loader[T]) *Value[T] {
	return &Value[T]{load: load, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; tests use it to step past the ttl.
func (v *Value[T]) WithClock(now func() time.Time) *Value[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = now
	return v
}

// Get returns the cached value, loading it when empty or expired. A failed load leaves
// the previous state untouched.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.valid && (v.ttl <= 0 || v.now().Sub(v.fetchedAt) < v.ttl) {
		return v.value, nil
	}
	fresh, err := v.load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	v.value, v.fetchedAt, v.valid = fresh, v.now(), true
	return fresh, nil
}

// Invalidate forces the next Get to reload.
func (v *Value[T]) Invalidate() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.valid = false
}

// FetchedAt reports when the current value was loaded; zero when empty.
func (v *Value[T]) FetchedAt() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.valid {
		return time.Time{}
	}
	return v.fetchedAt
}
