package harness

import "github.com/roach88/playtree/internal/engine"

// recorder remembers the values the engine actually took from a source.
// A step's listed draws may be longer or shorter than what the engine
// consumes; the journal must hold exactly the consumed ones.
type recorder struct {
	src   engine.Source
	drawn []float64
}

func (r *recorder) Float64() float64 {
	v := r.src.Float64()
	r.drawn = append(r.drawn, v)
	return v
}

func randoms(d Draws) (engine.Randoms, *recorder, *recorder) {
	sel := &recorder{src: engine.Draws(d.Selector...)}
	edge := &recorder{src: engine.Draws(d.Edge...)}
	return engine.Randoms{Selector: sel, Edge: edge}, sel, edge
}
