package testutil

import "sync"

// ScriptSource is a random source that cycles through a fixed script of
// values. It satisfies engine.Source.
type ScriptSource struct {
	mu     sync.Mutex
	values []float64
	drawn  int
}

// Script returns a source that yields values in order and then starts
// over. An empty script always yields 0.
func Script(values ...float64) *ScriptSource {
	return &ScriptSource{values: append([]float64(nil), values...)}
}

// Float64 returns the next scripted value.
func (s *ScriptSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		s.drawn++
		return 0
	}
	v := s.values[s.drawn%len(s.values)]
	s.drawn++
	return v
}

// Drawn returns how many values have been taken.
func (s *ScriptSource) Drawn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawn
}
