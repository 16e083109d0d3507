package parallel

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	tests := []struct {
		name string
		n    int
		cfg  Config
	}{
		{"default", 100000, DefaultConfig()},
		{"sequential", 1000, Config{Workers: 1}},
		{"below min chunk", 10, Config{Workers: 8, MinChunk: 64}},
		{"uneven chunks", 1001, Config{Workers: 7, MinChunk: 1}},
		{"empty", 0, DefaultConfig()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make([]int32, tt.n)
			For(tt.n, tt.cfg, func(i int) {
				atomic.AddInt32(&seen[i], 1)
			})
			for i, c := range seen {
				if c != 1 {
					t.Fatalf("index %d visited %d times", i, c)
				}
			}
		})
	}
}

func TestRangeIntervals(t *testing.T) {
	var (
		mu    sync.Mutex
		total int
		calls int
	)
	Range(10, Config{Workers: 3, MinChunk: 1}, func(lo, hi int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Less(t, lo, hi)
		total += hi - lo
		calls++
	})
	assert.Equal(t, 10, total)
	assert.Equal(t, 3, calls)
}

func TestRangeSequentialSingleCall(t *testing.T) {
	calls := 0
	Range(500, Config{Workers: 1, MinChunk: 1}, func(lo, hi int) {
		calls++
		assert.Equal(t, 0, lo)
		assert.Equal(t, 500, hi)
	})
	assert.Equal(t, 1, calls)
}
