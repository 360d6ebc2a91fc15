package session

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/roach88/playtree/internal/engine"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// newRNG returns a generator for seed that has already produced skip
// values.
func newRNG(seed int64, skip int) *rand.Rand {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < skip; i++ {
		rng.Float64()
	}
	return rng
}

// recorder passes draws through from src and remembers them.
type recorder struct {
	src   engine.Source
	drawn []float64
}

func (r *recorder) Float64() float64 {
	v := r.src.Float64()
	r.drawn = append(r.drawn, v)
	return v
}

// recording wraps one generator as the two engine sources, keeping the
// values drawn by each.
func recording(rng *rand.Rand) (engine.Randoms, *recorder, *recorder) {
	sel := &recorder{src: rng}
	edge := &recorder{src: rng}
	return engine.Randoms{Selector: sel, Edge: edge}, sel, edge
}
