package parallel

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestWorkerCount(t *testing.T) {
	tests := []struct {
		workers, want int
	}{
		{0, 1},
		{1, 1},
		{6, 6},
		{-1, max(runtime.NumCPU(), 1)},
	}
	for _, tt := range tests {
		if got := WorkerCount(tt.workers); got != tt.want {
			t.Errorf("WorkerCount(%d) = %d, want %d", tt.workers, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		cfg    Config
		chunks int
	}{
		{"disabled", 10, Config{Enabled: false, NumWorkers: 4}, 1},
		{"single worker", 10, Workers(1), 1},
		{"even", 8, Workers(4), 4},
		{"uneven", 10, Workers(4), 4},
		{"fewer items than workers", 3, Workers(8), 3},
		{"below min chunk", 5, Config{Enabled: true, NumWorkers: 4, MinChunkSize: 4}, 1},
		{"empty", 0, Workers(4), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranges := Split(tt.n, tt.cfg)
			if len(ranges) != tt.chunks {
				t.Fatalf("Split(%d) = %d chunks, want %d", tt.n, len(ranges), tt.chunks)
			}

			// Ranges must tile [0, n) in order with dense worker indices.
			next := 0
			for i, r := range ranges {
				if r.Worker != i || r.Start != next || r.End <= r.Start {
					t.Errorf("bad range %d: %+v", i, r)
				}
				next = r.End
			}
			if next != tt.n {
				t.Errorf("ranges cover [0, %d), want [0, %d)", next, tt.n)
			}
		})
	}
}

func TestRun_PerWorkerBuffers(t *testing.T) {
	ranges := Split(100, Workers(4))
	partial := make([]int, len(ranges))

	Run(ranges, func(r Range) {
		for i := r.Start; i < r.End; i++ {
			partial[r.Worker] += i
		}
	})

	total := 0
	for _, p := range partial {
		total += p
	}
	if total != 4950 {
		t.Errorf("Expected 4950, got %d", total)
	}
}

func BenchmarkRun(b *testing.B) {
	n := 10000
	sum := func(cfg Config) {
		var total int64
		Run(Split(n, cfg), func(r Range) {
			for i := r.Start; i < r.End; i++ {
				atomic.AddInt64(&total, int64(i))
			}
		})
	}

	b.Run("parallel", func(b *testing.B) {
		cfg := DefaultConfig()
		for i := 0; i < b.N; i++ {
			sum(cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfg := Config{Enabled: false}
		for i := 0; i < b.N; i++ {
			sum(cfg)
		}
	})
}
