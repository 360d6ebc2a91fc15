package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDeterministicClock_Sequence tests numbering and Reset from zero and
// from an offset start.
func TestDeterministicClock_Sequence(t *testing.T) {
	tests := []struct {
		name  string
		clock *DeterministicClock
		first int64
	}{
		{"from zero", NewDeterministicClock(), 1},
		{"from offset", NewDeterministicClockAt(41), 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.clock
			assert.Equal(t, tt.first-1, c.Current())
			assert.Equal(t, tt.first, c.Next())
			assert.Equal(t, tt.first+1, c.Next())
			assert.Equal(t, tt.first+1, c.Current())

			c.Reset()
			assert.Equal(t, tt.first-1, c.Current())
			assert.Equal(t, tt.first, c.Next())
		})
	}
}

// TestDeterministicClock_ThreadSafe tests that concurrent callers never see
// a duplicate value.
func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock()
	const workers, calls = 50, 100

	var (
		mu   sync.Mutex
		seen = make(map[int64]bool)
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				v := clock.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*calls)
	assert.Equal(t, int64(workers*calls), clock.Current())
}

// TestFixedSessionIDs tests listed ids then the fallback.
func TestFixedSessionIDs(t *testing.T) {
	g := NewFixedSessionIDs("alpha", "beta")
	assert.Equal(t, "alpha", g.Generate())
	assert.Equal(t, "beta", g.Generate())
	assert.Equal(t, "session-3", g.Generate())
}

// TestScript tests cycling and the empty script.
func TestScript(t *testing.T) {
	s := Script(0.1, 0.9)
	got := []float64{s.Float64(), s.Float64(), s.Float64()}
	assert.Equal(t, []float64{0.1, 0.9, 0.1}, got)
	assert.Equal(t, 3, s.Drawn())

	empty := Script()
	assert.Equal(t, 0.0, empty.Float64())
	assert.Equal(t, 1, empty.Drawn())
}
