package parallel

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/symforest/pkg/errors"
)

func TestParallelizeCoversEveryItemOnce(t *testing.T) {
	for _, tc := range []struct{ items, workers int }{
		{1, 4}, {7, 3}, {128, 8}, {1000, 0}, {5, 5},
	} {
		t.Run(fmt.Sprintf("items=%d/workers=%d", tc.items, tc.workers), func(t *testing.T) {
			seen := make([]int32, tc.items)
			var calls int32
			err := Parallelize(tc.items, tc.workers, func(worker, start, end int) error {
				atomic.AddInt32(&calls, 1)
				for i := start; i < end; i++ {
					atomic.AddInt32(&seen[i], 1)
				}
				return nil
			})
			require.NoError(t, err)
			for i, n := range seen {
				assert.Equal(t, int32(1), n, "item %d", i)
			}
			assert.LessOrEqual(t, int(calls), Workers(tc.items, tc.workers))
		})
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	require.NoError(t, Parallelize(0, 4, func(_, _, _ int) error {
		called = true
		return nil
	}))
	assert.False(t, called)
}

func TestParallelizeErrors(t *testing.T) {
	sentinel := fmt.Errorf("block failed")
	err := Parallelize(10, 5, func(worker, start, end int) error {
		if start <= 6 && 6 < end {
			return sentinel
		}
		return nil
	})
	assert.ErrorIs(t, err, sentinel)

	err = Parallelize(10, 2, func(worker, start, end int) error {
		if worker == 1 {
			panic("worker crashed")
		}
		return nil
	})
	var panicErr *errors.PanicError
	require.True(t, errors.As(err, &panicErr))
	assert.Equal(t, "worker crashed", panicErr.PanicValue)
}

func TestParallelizeWithThreshold(t *testing.T) {
	var ranges [][2]int
	err := ParallelizeWithThreshold(50, 100, 4, func(worker, start, end int) error {
		ranges = append(ranges, [2]int{start, end})
		assert.Equal(t, 0, worker)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{0, 50}}, ranges)

	var total int64
	err = ParallelizeWithThreshold(500, 100, 4, func(_, start, end int) error {
		atomic.AddInt64(&total, int64(end-start))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), total)
}
