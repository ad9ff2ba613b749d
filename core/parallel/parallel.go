package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/symforest/pkg/errors"
)

// Parallelize divides items into contiguous ranges, one per worker, and calls
// fn(worker, start, end) for each range concurrently. Each worker index is used
// by exactly one goroutine, so fn may key per-worker scratch state on it.
//
// workers <= 0 means runtime.NumCPU(). A panic inside fn is converted into an
// error. The error of the lowest-numbered failing worker is returned.
func Parallelize(items, workers int, fn func(worker, start, end int) error) error {
	if items == 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// ceiling division
	chunkSize := (items + workers - 1) / workers

	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			errs[w] = errors.SafeExecute("parallel worker", func() error {
				return fn(w, s, e)
			})
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// ParallelizeWithThreshold runs fn(0, 0, items) on the calling goroutine when
// items <= threshold or only one worker is requested, and Parallelize otherwise.
func ParallelizeWithThreshold(items, threshold, workers int, fn func(worker, start, end int) error) error {
	if items <= threshold || workers == 1 {
		if items == 0 {
			return nil
		}
		return fn(0, 0, items)
	}
	return Parallelize(items, workers, fn)
}

// Workers reports how many workers Parallelize would start for items.
func Workers(items, workers int) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items
	}
	return workers
}
