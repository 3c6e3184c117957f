// Package parallel provides the chunked fan-out used to compute per-sample
// gradients of a batch concurrently.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4,
	}
}

// Workers returns a config using up to n goroutines; n <= 1 disables
// parallelism.
func Workers(n int) Config {
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1,
	}
}

// Range is a contiguous chunk [Start, End) assigned to worker Worker.
// Worker indices are dense, starting at 0.
type Range struct {
	Worker, Start, End int
}

// Split partitions [0, n) into at most cfg.NumWorkers chunks of at least
// cfg.MinChunkSize items. Sequential configs yield a single range.
func Split(n int, cfg Config) []Range {
	if n <= 0 {
		return nil
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*max(cfg.MinChunkSize, 1) {
		return []Range{{Worker: 0, Start: 0, End: n}}
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
	ranges := make([]Range, 0, cfg.NumWorkers)
	for start := 0; start < n; start += chunkSize {
		ranges = append(ranges, Range{Worker: len(ranges), Start: start, End: min(start+chunkSize, n)})
	}
	return ranges
}

// Run executes f once per range. A single range runs on the calling
// goroutine.
func Run(ranges []Range, f func(r Range)) {
	if len(ranges) == 1 {
		f(ranges[0])
		return
	}

	var wg sync.WaitGroup
	for _, r := range ranges {
		wg.Add(1)
		go func(r Range) {
			defer wg.Done()
			f(r)
		}(r)
	}
	wg.Wait()
}

// WorkerCount maps a Workers option onto a goroutine count: negative means
// one per CPU, zero and one mean sequential.
func WorkerCount(workers int) int {
	if workers < 0 {
		return max(DefaultConfig().NumWorkers, 1)
	}
	return max(workers, 1)
}
