// Package lazy holds process-wide values that are expensive to build, such as
// model clients, and creates them on first use.
package lazy

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

const key = "value"

// Value builds its content once on success. Concurrent first callers share a
// single build; a failed build is not remembered, so the next Get retries.
type Value[T any] struct {
	build func(ctx context.Context) (T, error)
	group singleflight.Group

	mu    sync.RWMutex
	ready bool
	value T
}

func New[T any](build func(ctx context.Context) (T, error)) *Value[T] {
	return &Value[T]{build: build}
}

// Get returns the cached value, building it when needed.
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	v.mu.RLock()
	if v.ready {
		defer v.mu.RUnlock()
		return v.value, nil
	}
	v.mu.RUnlock()

	res, err, _ := v.group.Do(key, func() (any, error) {
		v.mu.RLock()
		if v.ready {
			defer v.mu.RUnlock()
			return v.value, nil
		}
		v.mu.RUnlock()

		value, err := v.build(ctx)
		if err != nil {
			return nil, err
		}

		v.mu.Lock()
		v.value = value
		v.ready = true
		v.mu.Unlock()

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	// A build may return a nil interface value.
	value, _ := res.(T)
	return value, nil
}

// Ready reports whether the value has been built.
func (v *Value[T]) Ready() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.ready
}
