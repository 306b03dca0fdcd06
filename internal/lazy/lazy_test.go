package lazy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueBuildsOnce(t *testing.T) {
	var calls atomic.Int32
	start := make(chan struct{})

	v := New(func(context.Context) (string, error) {
		calls.Add(1)
		<-start
		return "model", nil
	})
	assert.False(t, v.Ready())

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := v.Get(context.Background())
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	close(start)
	wg.Wait()

	got, err := v.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "model", got)
	assert.True(t, v.Ready())
	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "model", r)
	}
}

func TestValueRetriesAfterFailure(t *testing.T) {
	attempts := 0
	v := New(func(context.Context) (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errors.New("model server is down")
		}
		return 42, nil
	})

	_, err := v.Get(context.Background())
	require.Error(t, err)
	assert.False(t, v.Ready())

	got, err := v.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, attempts)
}

func TestValueNilInterface(t *testing.T) {
	v := New(func(context.Context) (any, error) {
		return nil, nil
	})

	got, err := v.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, v.Ready())
}
