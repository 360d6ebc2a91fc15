package engine

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/playtree/internal/playtree"
)

func quietEngine(opts ...EngineOption) *Engine {
	base := []EngineOption{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	return New(append(base, opts...)...)
}

func node(id string, kind playtree.NodeKind, items ...playtree.Playitem) *playtree.Playnode {
	return &playtree.Playnode{
		ID:    id,
		Name:  strings.ToUpper(id),
		Kind:  kind,
		Items: items,
		Limit: playtree.Unlimited,
	}
}

func item(id string, mult, limit int) playtree.Playitem {
	return playtree.Playitem{ID: id, Name: id, Multiplier: mult, Limit: limit}
}

func edge(target string, priority, shares, limit int) playtree.Playedge {
	return playtree.Playedge{Target: target, Priority: priority, Shares: shares, Limit: limit}
}

// build assembles a tree; roots get indexes in argument order.
func build(roots []string, nodes ...*playtree.Playnode) *playtree.Playtree {
	t := &playtree.Playtree{
		Nodes: make(map[string]*playtree.Playnode, len(nodes)),
		Roots: make(map[string]playtree.Playroot, len(roots)),
	}
	for _, n := range nodes {
		t.Nodes[n.ID] = n
	}
	for i, id := range roots {
		t.Roots[id] = playtree.Playroot{Index: i, Name: "root " + id}
	}
	return t
}

func current(t *testing.T, s Snapshot) PlayheadView {
	t.Helper()
	v, ok := s.CurrentView()
	require.True(t, ok, "no current playhead in snapshot")
	return v
}

// count reads one counter of a playhead by its key string.
func count(t *testing.T, e *Engine, playhead, key string) int {
	t.Helper()
	entries, ok := e.Counters(playhead)
	require.True(t, ok)
	for _, en := range entries {
		if en.Key.String() == key {
			return en.Count
		}
	}
	require.Failf(t, "counter not found", "key %s", key)
	return 0
}

// state captures everything the advance/rewind round trip must restore.
type state struct {
	pos      Position
	counters string
}

func capture(t *testing.T, e *Engine) state {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.playheads[e.current]
	require.NotNil(t, p)
	var b strings.Builder
	for _, en := range p.Counters.Entries() {
		b.WriteString(en.Key.String())
		b.WriteByte('=')
		b.WriteString(strings.Repeat("|", en.Count))
		b.WriteByte(';')
	}
	return state{pos: p.Position, counters: b.String()}
}
