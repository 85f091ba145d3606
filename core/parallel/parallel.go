// Package parallel provides fork/join helpers for embarrassingly parallel
// estimation work such as forest-member fitting and cross-validation folds.
package parallel

import (
	"runtime"
	"sync"

	"github.com/YuminosukeSato/scigo/pkg/errors"
)

// Parallelize divides items across the available CPU cores and executes fn in
// parallel for each contiguous range [start, end).
func Parallelize(items int, fn func(start, end int)) {
	if items == 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items // No need for more workers than items
	}

	// Number of items per worker (ceiling division).
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold parallelizes only when items exceeds threshold;
// below it the work runs sequentially on the calling goroutine.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}

// ForEach runs fn(i) for every i in [0, items) on the worker pool and returns
// the first error by index order. Panics inside a unit are recovered into
// errors. Units do not share state; on error the caller must discard all
// partial results, which ForEach makes safe by always waiting for every unit
// to finish before returning.
func ForEach(items int, op string, fn func(i int) error) error {
	if items == 0 {
		return nil
	}

	errs := make([]error, items)
	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			i := i
			errs[i] = errors.SafeExecute(op, func() error {
				return fn(i)
			})
		}
	})

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
