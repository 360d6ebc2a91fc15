package engine

import (
	"fmt"

	"github.com/roach88/playtree/internal/counter"
	"github.com/roach88/playtree/internal/playtree"
)

// Snapshot is the externally visible player state after an operation.
type Snapshot struct {
	Current   string         `json:"current"`
	Playheads []PlayheadView `json:"playheads"`
}

// PlayheadView is one playhead as seen by the player shell. Counts and
// limits are read at the node's resolved scope; an untracked entity reports
// count 0 and limit -1.
type PlayheadView struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Index int    `json:"index"`

	Node     string `json:"node"`
	NodeName string `json:"node_name,omitempty"`
	Item     int    `json:"item"`
	ItemID   string `json:"item_id,omitempty"`
	ItemName string `json:"item_name,omitempty"`
	ItemURI  string `json:"item_uri,omitempty"`
	Mult     int    `json:"mult"`

	Scope     int `json:"scope"`
	NodeCount int `json:"node_count"`
	NodeLimit int `json:"node_limit"`
	ItemCount int `json:"item_count"`
	ItemLimit int `json:"item_limit"`

	Stopped bool      `json:"stopped"`
	History int       `json:"history"`
	Last    Step      `json:"last"`
	Log     []Message `json:"log"`
}

// Playhead returns the view of playhead id.
func (s Snapshot) Playhead(id string) (PlayheadView, bool) {
	for _, v := range s.Playheads {
		if v.ID == id {
			return v, true
		}
	}
	return PlayheadView{}, false
}

// CurrentView returns the view of the current playhead.
func (s Snapshot) CurrentView() (PlayheadView, bool) {
	return s.Playhead(s.Current)
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{Current: e.current, Playheads: make([]PlayheadView, 0, len(e.order))}
	for _, id := range e.order {
		s.Playheads = append(s.Playheads, e.view(e.playheads[id]))
	}
	return s
}

func (e *Engine) view(p *Playhead) PlayheadView {
	c := p.Counters
	v := PlayheadView{
		ID:      p.ID,
		Name:    p.Name,
		Index:   p.Index,
		Node:    p.Node,
		Item:    p.Item,
		Mult:    p.Mult,
		Scope:   e.scopes.Node(p.Node),
		Stopped: p.Stopped,
		History: len(p.History),
		Last:    p.Last,
		Log:     append([]Message(nil), p.Messages...),
	}
	v.NodeCount, v.NodeLimit, _ = c.Read(c.NodeKey(p.Node))
	v.ItemLimit = playtree.Unlimited

	node := e.tree.Node(p.Node)
	if node == nil {
		return v
	}
	v.NodeName = node.Name
	if item := node.Item(p.Item); item != nil {
		v.ItemID = item.ID
		v.ItemName = item.Name
		v.ItemURI = item.URI
		v.ItemCount, v.ItemLimit, _ = c.Read(c.ItemKey(node.ID, item.ID))
	}
	return v
}

// StateHash returns a content hash of every playhead's position, flags,
// history depth, counters, and message count. Two engines driven through
// the same operations with the same draws hash identically.
func (e *Engine) StateHash() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	heads := make([]any, 0, len(e.order))
	for _, id := range e.order {
		p := e.playheads[id]
		heads = append(heads, map[string]any{
			"id":       p.ID,
			"node":     p.Node,
			"item":     p.Item,
			"mult":     p.Mult,
			"stopped":  p.Stopped,
			"history":  len(p.History),
			"messages": len(p.Messages),
			"counters": countersMap(p.Counters.Entries()),
		})
	}
	data, err := playtree.MarshalCanonical(map[string]any{
		"current":   e.current,
		"playheads": heads,
	})
	if err != nil {
		return "", fmt.Errorf("state hash: %w", err)
	}
	return playtree.HashWithDomain(playtree.DomainSnapshot, data), nil
}

func countersMap(entries []counter.Entry) map[string]any {
	m := make(map[string]any, len(entries))
	for _, en := range entries {
		m[en.Key.String()] = en.Count
	}
	return m
}
