// Package parallel splits element-wise loops over large arrays across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Workers  int // Upper bound on goroutines. Values below 2 run sequentially.
	MinChunk int // Minimum elements per goroutine.
}

// DefaultConfig uses one worker per CPU and chunks of at least 4096 elements.
func DefaultConfig() Config {
	return Config{
		Workers:  runtime.NumCPU(),
		MinChunk: 4096,
	}
}

// Range calls fn over disjoint half-open intervals covering [0, n).
// Intervals may run concurrently; Range returns once all of them have finished.
func Range(n int, cfg Config, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	if cfg.Workers < 2 || n <= cfg.MinChunk {
		fn(0, n)
		return
	}

	chunk := max((n+cfg.Workers-1)/cfg.Workers, cfg.MinChunk, 1)

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(lo, hi)
		}()
	}
	wg.Wait()
}

// For calls fn(i) for every i in [0, n).
func For(n int, cfg Config, fn func(i int)) {
	Range(n, cfg, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(i)
		}
	})
}
