package engine

import (
	"math"
	"sync"
)

// Source supplies uniform random values in [0,1). The engine never draws
// randomness itself; every draw comes from a Source passed by the caller.
type Source interface {
	Float64() float64
}

// Randoms carries the two sources an operation may draw from: one for
// selector item picks, one for edge picks. A nil source draws 0.
type Randoms struct {
	Selector Source
	Edge     Source
}

// DrawList replays a fixed list of values. Once the list is used up the
// last value repeats; an empty list yields 0.
type DrawList struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// Draws returns a DrawList over values.
func Draws(values ...float64) *DrawList {
	return &DrawList{values: append([]float64(nil), values...)}
}

// Float64 implements Source.
func (d *DrawList) Float64() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.values) == 0 {
		return 0
	}
	i := d.next
	if i >= len(d.values) {
		i = len(d.values) - 1
	} else {
		d.next++
	}
	return d.values[i]
}

// Used returns how many listed values have been consumed.
func (d *DrawList) Used() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next
}

var belowOne = math.Nextafter(1, 0)

// draw takes one value from s and clamps it into [0,1).
func draw(s Source) float64 {
	if s == nil {
		return 0
	}
	v := s.Float64()
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v >= 1:
		return belowOne
	}
	return v
}

// weightedPick returns the index of the first weight whose running total
// exceeds r scaled by the sum of weights. Non-positive weights never win.
// It returns -1 when no weight is positive.
func weightedPick(weights []int, r float64) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return -1
	}
	scaled := r * float64(total)
	cum := 0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if float64(cum) > scaled {
			return i
		}
	}
	return last
}
