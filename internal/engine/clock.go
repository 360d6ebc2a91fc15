package engine

import "sync/atomic"

// SeqSource hands out increasing sequence numbers. Messages are stamped
// from it so logs order by seq, never by wall clock.
// *Clock and testutil.DeterministicClock implement it.
type SeqSource interface {
	Next() int64
}

// Clock is the default SeqSource, a logical counter starting at 0.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock whose first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock whose first Next returns start+1.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
