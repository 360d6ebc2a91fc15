package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/playtree/internal/counter"
	"github.com/roach88/playtree/internal/playtree"
)

// Event is an advance trigger.
type Event string

const (
	// SongEnded marks the current item as played before moving on.
	SongEnded Event = "song_ended"

	// SkipForward moves on without counting the current item as played.
	SkipForward Event = "skip_forward"
)

// Valid reports whether ev is a known event.
func (ev Event) Valid() bool {
	return ev == SongEnded || ev == SkipForward
}

// Direction moves the current playhead selection.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Position is where a playhead stands: a node, an item index within it
// (-1 when the node offers nothing to play) and the multiplicity index of
// that item.
type Position struct {
	Node string `json:"node"`
	Item int    `json:"item"`
	Mult int    `json:"mult"`
}

// HistoryNode undoes one advance step.
type HistoryNode struct {
	// Prev is the position before the step.
	Prev Position

	// Edge is the last edge traversed, nil for an intra-node step.
	Edge *playtree.EdgeRef

	// Route lists every edge traversed in order, pass-through hops
	// included.
	Route []playtree.EdgeRef

	// Cached holds the scope buckets zeroed by exits during the step.
	Cached []counter.Snapshot

	delta counter.Delta
}

// StepKind classifies the last operation on a playhead.
type StepKind string

const (
	StepStart     StepKind = "start"
	StepIntra     StepKind = "intra"
	StepTraversed StepKind = "traversed"
	StepReset     StepKind = "reset"
	StepRewind    StepKind = "rewind"
)

// Step describes the outcome of the last operation on a playhead.
type Step struct {
	Kind  StepKind           `json:"kind"`
	Event Event              `json:"event,omitempty"`
	Route []playtree.EdgeRef `json:"route,omitempty"`

	// Failure is set on StepReset: ErrCodeTraversalLimit or
	// ErrCodeNoEligibleEdge.
	Failure RuntimeErrorCode `json:"failure,omitempty"`
}

// Message is one entry of a playhead's running log.
type Message struct {
	Seq   int64  `json:"seq"`
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Playhead walks the tree from one root. Its identity is the root node id.
type Playhead struct {
	ID    string
	Name  string
	Index int

	Position
	Stopped bool
	Last    Step

	Counters *counter.Store
	History  []HistoryNode
	Messages []Message
}

// say appends to the playhead's message log and mirrors it to slog.
func (e *Engine) say(p *Playhead, level slog.Level, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	p.Messages = append(p.Messages, Message{
		Seq:   e.clock.Next(),
		Level: level.String(),
		Text:  text,
	})
	e.log.Log(context.Background(), level, text, "playhead", p.ID, "node", p.Node, "item", p.Item)
}

// describe renders a position for messages.
func describe(t *playtree.Playtree, pos Position) string {
	node := t.Node(pos.Node)
	if node == nil {
		return fmt.Sprintf("%q", pos.Node)
	}
	item := node.Item(pos.Item)
	if item == nil {
		return fmt.Sprintf("%q (nothing playable)", label(node.ID, node.Name))
	}
	return fmt.Sprintf("%q in %q", label(item.ID, item.Name), label(node.ID, node.Name))
}

func label(id, name string) string {
	if name != "" {
		return name
	}
	return id
}
