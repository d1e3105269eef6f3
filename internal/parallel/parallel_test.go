package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dtable/resource"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		opts   Options
		chunks int
	}{
		{"empty", 0, Options{Parallelism: 4, MinRows: 10}, 1},
		{"below min rows", 15, Options{Parallelism: 4, MinRows: 10}, 1},
		{"capped by parallelism", 1000, Options{Parallelism: 4, MinRows: 10}, 4},
		{"capped by min rows", 35, Options{Parallelism: 8, MinRows: 10}, 3},
		{"capped by controller", 1000, Options{Parallelism: 8, MinRows: 1, Controller: resource.NewController(resource.Config{MaxWorkers: 2})}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := Split(tt.n, tt.opts)
			require.Len(t, chunks, tt.chunks)

			next := 0
			for i, c := range chunks {
				assert.Equal(t, i, c.Index)
				assert.Equal(t, next, c.Lo)
				next = c.Hi
			}
			assert.Equal(t, tt.n, next)
		})
	}
}

func TestMap_PreservesChunkOrder(t *testing.T) {
	chunks := Split(10_000, Options{Parallelism: 8, MinRows: 100})
	out, err := Map(context.Background(), chunks, Options{Parallelism: 8}, func(_ context.Context, c Chunk) (int, error) {
		return c.Lo, nil
	})
	require.NoError(t, err)
	for i, c := range chunks {
		assert.Equal(t, c.Lo, out[i])
	}
}

func TestMap_Error(t *testing.T) {
	boom := errors.New("boom")
	chunks := Split(1000, Options{Parallelism: 4, MinRows: 10})

	_, err := Map(context.Background(), chunks, Options{Parallelism: 4}, func(_ context.Context, c Chunk) (int, error) {
		if c.Index == 2 {
			return 0, boom
		}
		return 0, nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestFor_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := For(ctx, []Chunk{{Hi: 10}}, Options{}, func(context.Context, Chunk) error {
		calls.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
