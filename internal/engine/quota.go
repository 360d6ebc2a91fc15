package engine

import (
	"errors"
	"fmt"
)

// TraversalGuard bounds the number of hops one edge traversal may take.
//
// A traversal passes through nodes that are exhausted or empty. A cycle of
// such nodes never lands, so every hop is checked against the cap and the
// traversal fails once it is exceeded.
type TraversalGuard struct {
	maxSteps int
	current  int
}

// NewTraversalGuard creates a guard allowing maxSteps hops.
func NewTraversalGuard(maxSteps int) *TraversalGuard {
	return &TraversalGuard{maxSteps: maxSteps}
}

// Check counts one hop and fails when the cap is exceeded.
func (g *TraversalGuard) Check(playhead string) error {
	g.current++
	if g.current > g.maxSteps {
		return &TraversalLimitError{
			Playhead: playhead,
			Steps:    g.current,
			Limit:    g.maxSteps,
		}
	}
	return nil
}

// Current returns the number of hops counted so far.
func (g *TraversalGuard) Current() int {
	return g.current
}

// MaxSteps returns the cap.
func (g *TraversalGuard) MaxSteps() int {
	return g.maxSteps
}

// TraversalLimitError reports a traversal that exceeded its hop cap.
type TraversalLimitError struct {
	Playhead string
	Steps    int
	Limit    int
}

// Error implements the error interface.
func (e *TraversalLimitError) Error() string {
	return fmt.Sprintf("playhead %s exceeded traversal limit: %d steps > %d limit",
		e.Playhead, e.Steps, e.Limit)
}

// RuntimeError converts the limit breach to its coded form.
func (e *TraversalLimitError) RuntimeError() *RuntimeError {
	return &RuntimeError{
		Code:     ErrCodeTraversalLimit,
		Message:  fmt.Sprintf("traversal exceeded %d steps", e.Limit),
		Playhead: e.Playhead,
		Details: map[string]string{
			"steps":     fmt.Sprintf("%d", e.Steps),
			"max_steps": fmt.Sprintf("%d", e.Limit),
		},
	}
}

// IsTraversalLimit returns true if the error is a traversal limit breach,
// either as a TraversalLimitError or a RuntimeError with ErrCodeTraversalLimit.
func IsTraversalLimit(err error) bool {
	var te *TraversalLimitError
	if errors.As(err, &te) {
		return true
	}
	return HasCode(err, ErrCodeTraversalLimit)
}
