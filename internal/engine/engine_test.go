package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/playtree/internal/playtree"
	"github.com/roach88/playtree/internal/testutil"
)

// TestAdvance_SequencerMultiplicityThenReset tests that a sequencer repeats
// items by multiplier and resets when it runs out with no edges.
func TestAdvance_SequencerMultiplicityThenReset(t *testing.T) {
	n := node("n", playtree.KindSequencer, item("a", 2, -1), item("b", 1, -1))
	e := quietEngine()

	snap, err := e.Load(build([]string{"n"}, n), Randoms{})
	require.NoError(t, err)
	v := current(t, snap)
	assert.Equal(t, "a", v.ItemID)
	assert.Equal(t, 0, v.Mult)
	assert.Equal(t, StepStart, v.Last.Kind)

	snap, err = e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)
	v = current(t, snap)
	assert.Equal(t, "a", v.ItemID)
	assert.Equal(t, 1, v.Mult)
	assert.Equal(t, StepIntra, v.Last.Kind)

	snap, err = e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)
	v = current(t, snap)
	assert.Equal(t, "b", v.ItemID)
	assert.Equal(t, 0, v.Mult)
	assert.Equal(t, 2, v.History)

	snap, err = e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)
	v = current(t, snap)
	assert.Equal(t, StepReset, v.Last.Kind)
	assert.Equal(t, ErrCodeNoEligibleEdge, v.Last.Failure)
	assert.True(t, v.Stopped)
	assert.Equal(t, "n", v.Node)
	assert.Equal(t, "a", v.ItemID)
	assert.Equal(t, 0, v.Mult)
	assert.Zero(t, v.History)
}

// TestAdvance_LowerPriorityGroupWins tests that a higher priority edge is
// never drawn while a lower priority edge is eligible.
func TestAdvance_LowerPriorityGroupWins(t *testing.T) {
	for _, r := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		x := node("x", playtree.KindSequencer, item("x1", 1, -1))
		x.Next = []playtree.Playedge{edge("z", 1, 1, -1), edge("y", 0, 1, -1)}
		y := node("y", playtree.KindSequencer, item("y1", 1, -1))
		z := node("z", playtree.KindSequencer, item("z1", 1, -1))

		e := quietEngine()
		_, err := e.Load(build([]string{"x"}, x, y, z), Randoms{})
		require.NoError(t, err)

		snap, err := e.Advance(SongEnded, Randoms{Edge: Draws(r)})
		require.NoError(t, err)
		v := current(t, snap)
		assert.Equal(t, "y", v.Node, "draw %v", r)
		assert.Equal(t, []playtree.EdgeRef{{From: "x", To: "y"}}, v.Last.Route)
	}
}

// TestAdvance_FallsToNextGroupWhenExhausted tests that an exhausted edge
// opens the next priority group.
func TestAdvance_FallsToNextGroupWhenExhausted(t *testing.T) {
	x := node("x", playtree.KindSequencer, item("x1", 1, -1))
	x.Next = []playtree.Playedge{edge("y", 0, 1, 1), edge("z", 1, 1, -1)}
	y := node("y", playtree.KindSequencer, item("y1", 1, -1))
	y.Next = []playtree.Playedge{edge("x", 0, 1, -1)}
	z := node("z", playtree.KindSequencer, item("z1", 1, -1))

	e := quietEngine()
	_, err := e.Load(build([]string{"x"}, x, y, z), Randoms{})
	require.NoError(t, err)

	nodes := []string{}
	for i := 0; i < 3; i++ {
		snap, err := e.Advance(SongEnded, Randoms{})
		require.NoError(t, err)
		nodes = append(nodes, current(t, snap).Node)
	}
	assert.Equal(t, []string{"y", "x", "z"}, nodes)
	assert.Equal(t, 1, count(t, e, "x", "edge[-1] x->y"), "edge counters saturate at the limit")
}

// TestAdvance_WeightedEdges tests share-weighted draws within one group.
func TestAdvance_WeightedEdges(t *testing.T) {
	tests := []struct {
		draw float64
		want string
	}{
		{0, "y"},
		{0.2, "y"},
		{0.25, "z"},
		{0.9, "z"},
	}

	for _, tt := range tests {
		x := node("x", playtree.KindSequencer, item("x1", 1, -1))
		x.Next = []playtree.Playedge{edge("y", 0, 1, -1), edge("z", 0, 3, -1)}
		y := node("y", playtree.KindSequencer, item("y1", 1, -1))
		z := node("z", playtree.KindSequencer, item("z1", 1, -1))

		e := quietEngine()
		_, err := e.Load(build([]string{"x"}, x, y, z), Randoms{})
		require.NoError(t, err)

		snap, err := e.Advance(SongEnded, Randoms{Edge: Draws(tt.draw)})
		require.NoError(t, err)
		assert.Equal(t, tt.want, current(t, snap).Node, "draw %v", tt.draw)
	}
}

// TestAdvance_ScopeExitCachesAndRewindRestores tests that leaving a scope
// zeroes its counters and rewind brings back the exact values.
func TestAdvance_ScopeExitCachesAndRewindRestores(t *testing.T) {
	x := node("x", playtree.KindSequencer, item("a", 1, 5))
	x.Limit = 2
	x.Scopes = []int{0}
	x.Next = []playtree.Playedge{edge("y", 0, 1, 3)}
	y := node("y", playtree.KindSequencer, item("b", 1, -1))
	tree := build([]string{"x"}, x, y)
	tree.Scopes = []playtree.Playscope{{Name: "S"}}

	e := quietEngine()
	_, err := e.Load(tree, Randoms{})
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, e, "x", "node[0] x"))
	before := capture(t, e)

	snap, err := e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)
	v := current(t, snap)
	assert.Equal(t, "y", v.Node)
	assert.Equal(t, StepTraversed, v.Last.Kind)

	assert.Zero(t, count(t, e, "x", "node[0] x"))
	assert.Zero(t, count(t, e, "x", "item[0] x/a"))
	assert.Equal(t, 1, count(t, e, "x", "edge[-1] x->y"))

	history, ok := e.History("x")
	require.True(t, ok)
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Edge)
	assert.Equal(t, "x->y", history[0].Edge.String())
	require.Len(t, history[0].Cached, 1)
	cached := history[0].Cached[0]
	assert.Equal(t, 0, cached.Scope)
	require.Len(t, cached.Entries, 2)
	assert.Equal(t, 1, cached.Entries[0].Count, "node x before exit")
	assert.Equal(t, 1, cached.Entries[1].Count, "item a before exit")

	snap, err = e.Rewind()
	require.NoError(t, err)
	v = current(t, snap)
	assert.Equal(t, "x", v.Node)
	assert.Equal(t, StepRewind, v.Last.Kind)
	assert.Equal(t, before, capture(t, e))
}

// TestAdvance_ExhaustedSelectorTraverses tests that a selector with every
// item at its limit falls through to its edges.
func TestAdvance_ExhaustedSelectorTraverses(t *testing.T) {
	s := node("s", playtree.KindSelector, item("p", 1, 1), item("q", 1, 1))
	s.Next = []playtree.Playedge{edge("t", 0, 1, -1)}
	tn := node("t", playtree.KindSequencer, item("t1", 1, -1))

	e := quietEngine()
	snap, err := e.Load(build([]string{"s"}, s, tn), Randoms{Selector: Draws(0)})
	require.NoError(t, err)
	assert.Equal(t, "p", current(t, snap).ItemID)

	snap, err = e.Advance(SongEnded, Randoms{Selector: Draws(0)})
	require.NoError(t, err)
	v := current(t, snap)
	assert.Equal(t, "q", v.ItemID, "p is exhausted so only q is eligible")
	assert.Equal(t, StepIntra, v.Last.Kind)

	snap, err = e.Advance(SongEnded, Randoms{Selector: Draws(0)})
	require.NoError(t, err)
	v = current(t, snap)
	assert.Equal(t, "t", v.Node)
	assert.Equal(t, StepTraversed, v.Last.Kind)
	assert.Equal(t, []playtree.EdgeRef{{From: "s", To: "t"}}, v.Last.Route)
}

// TestAdvance_SelectorIsWeightedByMultiplier tests the selector item draw.
func TestAdvance_SelectorIsWeightedByMultiplier(t *testing.T) {
	tests := []struct {
		draw float64
		want string
	}{
		{0, "p"},
		{0.24, "p"},
		{0.26, "q"},
		{0.99, "q"},
	}
	for _, tt := range tests {
		s := node("s", playtree.KindSelector, item("p", 1, -1), item("q", 3, -1))
		e := quietEngine()
		snap, err := e.Load(build([]string{"s"}, s), Randoms{Selector: Draws(tt.draw)})
		require.NoError(t, err)
		assert.Equal(t, tt.want, current(t, snap).ItemID, "draw %v", tt.draw)
	}
}

// TestAdvance_SelectorRedrawsEachPlay tests that an unlimited selector
// draws again on every advance and takes exactly one value per draw.
func TestAdvance_SelectorRedrawsEachPlay(t *testing.T) {
	s := node("s", playtree.KindSelector, item("p", 1, -1), item("q", 1, -1))
	script := testutil.Script(0.1, 0.9)
	r := Randoms{Selector: script}
	e := quietEngine()

	snap, err := e.Load(build([]string{"s"}, s), r)
	require.NoError(t, err)
	played := []string{current(t, snap).ItemID}
	for i := 0; i < 3; i++ {
		snap, err = e.Advance(SongEnded, r)
		require.NoError(t, err)
		assert.Equal(t, StepIntra, current(t, snap).Last.Kind)
		played = append(played, current(t, snap).ItemID)
	}

	assert.Equal(t, []string{"p", "q", "p", "q"}, played)
	assert.Equal(t, 4, script.Drawn())
}

// TestAdvance_SkipForwardDoesNotCount tests that skipping leaves the item
// play count alone.
func TestAdvance_SkipForwardDoesNotCount(t *testing.T) {
	tests := []struct {
		event Event
		want  int
	}{
		{SkipForward, 0},
		{SongEnded, 1},
	}
	for _, tt := range tests {
		n := node("n", playtree.KindSequencer, item("a", 1, 3), item("b", 1, -1))
		e := quietEngine()
		_, err := e.Load(build([]string{"n"}, n), Randoms{})
		require.NoError(t, err)

		snap, err := e.Advance(tt.event, Randoms{})
		require.NoError(t, err)
		assert.Equal(t, "b", current(t, snap).ItemID)
		assert.Equal(t, tt.want, count(t, e, "n", "item[-1] n/a"), string(tt.event))
	}
}

// TestAdvance_PassThroughEmptyNode tests routing through a node with no items.
func TestAdvance_PassThroughEmptyNode(t *testing.T) {
	x := node("x", playtree.KindSequencer, item("x1", 1, -1))
	x.Next = []playtree.Playedge{edge("hub", 0, 1, -1)}
	hub := node("hub", playtree.KindSequencer)
	hub.Limit = 5
	hub.Next = []playtree.Playedge{edge("y", 0, 1, -1)}
	y := node("y", playtree.KindSequencer, item("y1", 1, -1))

	e := quietEngine()
	_, err := e.Load(build([]string{"x"}, x, hub, y), Randoms{})
	require.NoError(t, err)

	snap, err := e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)
	v := current(t, snap)
	assert.Equal(t, "y", v.Node)
	assert.Equal(t, []playtree.EdgeRef{{From: "x", To: "hub"}, {From: "hub", To: "y"}}, v.Last.Route)
	assert.Zero(t, count(t, e, "x", "node[-1] hub"), "pass-through nodes are not counted")

	history, _ := e.History("x")
	require.Len(t, history, 1)
	assert.Equal(t, "hub->y", history[0].Edge.String())
}

// TestAdvance_PassThroughNodeAtLimit tests that a node at its play limit is
// routed through rather than played.
func TestAdvance_PassThroughNodeAtLimit(t *testing.T) {
	x := node("x", playtree.KindSequencer, item("x1", 1, -1))
	x.Next = []playtree.Playedge{edge("m", 0, 1, -1)}
	m := node("m", playtree.KindSequencer, item("m1", 1, -1))
	m.Limit = 1
	m.Next = []playtree.Playedge{edge("x", 0, 1, -1)}

	e := quietEngine()
	_, err := e.Load(build([]string{"x"}, x, m), Randoms{})
	require.NoError(t, err)

	var snap Snapshot
	for i := 0; i < 3; i++ {
		snap, err = e.Advance(SongEnded, Randoms{})
		require.NoError(t, err)
	}
	v := current(t, snap)
	assert.Equal(t, "x", v.Node)
	assert.Equal(t, []playtree.EdgeRef{{From: "x", To: "m"}, {From: "m", To: "x"}}, v.Last.Route)
	assert.Equal(t, 1, count(t, e, "x", "node[-1] m"), "node counters saturate")
}

// TestAdvance_TraversalLimitResets tests the hop cap on cycles of
// pass-through nodes.
func TestAdvance_TraversalLimitResets(t *testing.T) {
	x := node("x", playtree.KindSequencer, item("x1", 1, -1))
	x.Next = []playtree.Playedge{edge("p", 0, 1, 100)}
	p := node("p", playtree.KindSequencer)
	p.Next = []playtree.Playedge{edge("q", 0, 1, 100)}
	q := node("q", playtree.KindSequencer)
	q.Next = []playtree.Playedge{edge("p", 0, 1, 100)}

	e := quietEngine(WithMaxTraversalSteps(5))
	_, err := e.Load(build([]string{"x"}, x, p, q), Randoms{})
	require.NoError(t, err)

	snap, err := e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)
	v := current(t, snap)
	assert.Equal(t, StepReset, v.Last.Kind)
	assert.Equal(t, ErrCodeTraversalLimit, v.Last.Failure)
	assert.Len(t, v.Last.Route, 5)
	assert.True(t, v.Stopped)
	assert.Equal(t, "x", v.Node)
	assert.Equal(t, "x1", v.ItemID)

	for _, key := range []string{"edge[-1] x->p", "edge[-1] p->q", "edge[-1] q->p"} {
		assert.Zero(t, count(t, e, "x", key), "failed traversal is rolled back: %s", key)
	}
	require.NotEmpty(t, v.Log)
	assert.Equal(t, "WARN", v.Log[len(v.Log)-2].Level)
}

// TestAdvance_ResetReturnsToRunStart tests that reset goes back to where
// the run began and zeroes scoped counters only.
func TestAdvance_ResetReturnsToRunStart(t *testing.T) {
	a := node("a", playtree.KindSequencer, item("a1", 1, -1))
	a.Scopes = []int{0}
	a.Limit = 10
	a.Next = []playtree.Playedge{edge("b", 0, 1, -1)}
	b := node("b", playtree.KindSequencer, item("b1", 1, -1))
	b.Scopes = []int{0}
	b.Limit = 10
	b.Next = []playtree.Playedge{edge("c", 0, 1, 4)}
	c := node("c", playtree.KindSequencer, item("c1", 1, -1))
	c.Scopes = []int{0}
	tree := build([]string{"a"}, a, b, c)
	tree.Scopes = []playtree.Playscope{{Name: "S"}}

	e := quietEngine()
	_, err := e.Load(tree, Randoms{})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = e.Advance(SongEnded, Randoms{})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, count(t, e, "a", "edge[0] b->c"))

	snap, err := e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)
	v := current(t, snap)
	assert.Equal(t, StepReset, v.Last.Kind)
	assert.Equal(t, "a", v.Node, "history's first entry started at a")
	assert.Equal(t, 1, count(t, e, "a", "node[0] a"), "re-entering a counts it")
	assert.Zero(t, count(t, e, "a", "node[0] b"))
	assert.Zero(t, count(t, e, "a", "edge[0] b->c"))
}

// TestAdvance_RootWithNothingPlayable tests a root whose node is empty.
func TestAdvance_RootWithNothingPlayable(t *testing.T) {
	hub := node("hub", playtree.KindSequencer)
	hub.Next = []playtree.Playedge{edge("y", 0, 1, -1)}
	y := node("y", playtree.KindSequencer, item("y1", 1, -1))

	e := quietEngine()
	snap, err := e.Load(build([]string{"hub"}, hub, y), Randoms{})
	require.NoError(t, err)
	v := current(t, snap)
	assert.Equal(t, -1, v.Item)
	assert.Empty(t, v.ItemID)

	snap, err = e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)
	assert.Equal(t, "y", current(t, snap).Node)
}

// TestRewind_RoundTrip tests that n advances followed by n rewinds restore
// the playhead and every counter exactly.
func TestRewind_RoundTrip(t *testing.T) {
	newTree := func() *playtree.Playtree {
		a := node("a", playtree.KindSequencer, item("a1", 2, 3), item("a2", 1, -1))
		a.Scopes = []int{0}
		a.Limit = 4
		a.Next = []playtree.Playedge{edge("b", 0, 1, -1)}
		b := node("b", playtree.KindSelector, item("b1", 1, 2), item("b2", 2, 2))
		b.Scopes = []int{0, 1}
		b.Limit = 3
		b.Next = []playtree.Playedge{edge("c", 0, 2, 5), edge("a", 0, 1, -1), edge("a", 1, 1, -1)}
		c := node("c", playtree.KindSequencer, item("c1", 1, 1))
		c.Scopes = []int{1}
		c.Limit = 1
		c.Next = []playtree.Playedge{edge("a", 0, 1, -1)}
		tree := build([]string{"a"}, a, b, c)
		tree.Scopes = []playtree.Playscope{{Name: "outer"}, {Name: "inner"}}
		return tree
	}

	for _, seed := range []int64{1, 7, 42, 2024} {
		for _, steps := range []int{1, 5, 25} {
			rng := rand.New(rand.NewSource(seed))
			r := Randoms{Selector: rng, Edge: rng}
			e := quietEngine()
			_, err := e.Load(newTree(), r)
			require.NoError(t, err)

			// Burn in so the round trip starts from non-zero counters.
			for i := 0; i < 3; i++ {
				_, err = e.Advance(SongEnded, r)
				require.NoError(t, err)
			}
			before := capture(t, e)

			for i := 0; i < steps; i++ {
				ev := SongEnded
				if rng.Intn(4) == 0 {
					ev = SkipForward
				}
				snap, err := e.Advance(ev, r)
				require.NoError(t, err)
				require.NotEqual(t, StepReset, current(t, snap).Last.Kind, "seed %d step %d", seed, i)
			}
			for i := 0; i < steps; i++ {
				_, err = e.Rewind()
				require.NoError(t, err)
			}

			assert.Equal(t, before, capture(t, e), "seed %d steps %d", seed, steps)
		}
	}
}

// TestRewind_EmptyHistoryIsNoop tests rewinding a fresh playhead.
func TestRewind_EmptyHistoryIsNoop(t *testing.T) {
	n := node("n", playtree.KindSequencer, item("a", 1, -1))
	e := quietEngine()
	loaded, err := e.Load(build([]string{"n"}, n), Randoms{})
	require.NoError(t, err)

	snap, err := e.Rewind()
	require.NoError(t, err)
	assert.Equal(t, loaded, snap)
}

// TestSwitchPlayhead tests ordering by root index and wrap-around.
func TestSwitchPlayhead(t *testing.T) {
	one := node("one", playtree.KindSequencer, item("o1", 1, -1))
	two := node("two", playtree.KindSequencer, item("t1", 1, -1), item("t2", 1, -1))
	tree := build(nil, one, two)
	tree.Roots = map[string]playtree.Playroot{
		"two": {Index: 0, Name: "first"},
		"one": {Index: 1, Name: "second"},
	}

	e := quietEngine()
	snap, err := e.Load(tree, Randoms{})
	require.NoError(t, err)
	require.Len(t, snap.Playheads, 2)
	assert.Equal(t, "two", snap.Current)
	assert.Equal(t, "two", snap.Playheads[0].ID)

	snap, err = e.SwitchPlayhead(Next)
	require.NoError(t, err)
	assert.Equal(t, "one", snap.Current)

	snap, err = e.SwitchPlayhead(Next)
	require.NoError(t, err)
	assert.Equal(t, "two", snap.Current, "wraps forward")

	snap, err = e.SwitchPlayhead(Prev)
	require.NoError(t, err)
	assert.Equal(t, "one", snap.Current, "wraps backward")

	snap, err = e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)
	assert.Equal(t, "two", snap.Current, "reset moves the selection on")
	stopped, _ := snap.Playhead("one")
	assert.True(t, stopped.Stopped)
	other, _ := snap.Playhead("two")
	assert.Equal(t, "t1", other.ItemID, "other playheads are untouched")
	assert.False(t, other.Stopped)
}

// TestContractErrors tests the errors returned for caller misuse.
func TestContractErrors(t *testing.T) {
	e := quietEngine()

	_, err := e.Advance(SongEnded, Randoms{})
	assert.True(t, HasCode(err, ErrCodeNotLoaded))
	_, err = e.Rewind()
	assert.True(t, HasCode(err, ErrCodeNotLoaded))
	_, err = e.SwitchPlayhead(Next)
	assert.True(t, HasCode(err, ErrCodeNotLoaded))
	_, err = e.Load(nil, Randoms{})
	assert.True(t, HasCode(err, ErrCodeNotLoaded))

	n := node("n", playtree.KindSequencer, item("a", 1, -1), item("b", 1, -1))
	loaded, err := e.Load(build([]string{"n"}, n), Randoms{})
	require.NoError(t, err)

	snap, err := e.Advance("fast_forward", Randoms{})
	assert.True(t, HasCode(err, ErrCodeUnknownEvent))
	assert.True(t, IsContractError(err))
	assert.Equal(t, loaded, snap, "rejected operations leave state unchanged")

	_, err = e.SwitchPlayhead(Direction(2))
	assert.True(t, HasCode(err, ErrCodeBadDirection))
}

// TestNoPlayheads tests a tree whose roots are missing or absent.
func TestNoPlayheads(t *testing.T) {
	n := node("n", playtree.KindSequencer, item("a", 1, -1))
	tree := build([]string{"ghost"}, n)

	e := quietEngine()
	snap, err := e.Load(tree, Randoms{})
	require.NoError(t, err)
	assert.Empty(t, snap.Playheads)
	assert.Empty(t, snap.Current)

	_, err = e.Advance(SongEnded, Randoms{})
	assert.True(t, HasCode(err, ErrCodeNoPlayhead))
	_, err = e.Rewind()
	assert.True(t, HasCode(err, ErrCodeNoPlayhead))

	_, err = e.SwitchPlayhead(Next)
	assert.NoError(t, err, "switching with no playheads does nothing")
}

// TestSnapshot_CountsAndLimits tests the per-playhead counter view.
func TestSnapshot_CountsAndLimits(t *testing.T) {
	n := node("n", playtree.KindSequencer, item("a", 2, 5))
	n.Limit = 3
	n.Name = "Morning"
	n.Items[0].URI = "spotify:track:1"

	e := quietEngine()
	_, err := e.Load(build([]string{"n"}, n), Randoms{})
	require.NoError(t, err)
	snap, err := e.Advance(SongEnded, Randoms{})
	require.NoError(t, err)

	v := current(t, snap)
	assert.Equal(t, "Morning", v.NodeName)
	assert.Equal(t, "spotify:track:1", v.ItemURI)
	assert.Equal(t, 1, v.NodeCount)
	assert.Equal(t, 3, v.NodeLimit)
	assert.Equal(t, 1, v.ItemCount)
	assert.Equal(t, 5, v.ItemLimit)
	assert.Equal(t, playtree.DefaultScope, v.Scope)
	assert.Len(t, v.Log, 2)
}

// TestStateHash_Deterministic tests that equal operation sequences hash
// equally and different ones do not.
func TestStateHash_Deterministic(t *testing.T) {
	run := func(steps int) string {
		s := node("s", playtree.KindSelector, item("p", 1, -1), item("q", 2, -1))
		e := quietEngine()
		r := Randoms{Selector: Draws(0.1, 0.6, 0.3, 0.9)}
		_, err := e.Load(build([]string{"s"}, s), r)
		require.NoError(t, err)
		for i := 0; i < steps; i++ {
			_, err = e.Advance(SongEnded, r)
			require.NoError(t, err)
		}
		h, err := e.StateHash()
		require.NoError(t, err)
		return h
	}

	assert.Equal(t, run(3), run(3))
	assert.NotEqual(t, run(3), run(2))
}

// TestParseEventAndDirection tests wire name parsing.
func TestParseEventAndDirection(t *testing.T) {
	ev, err := ParseEvent("skip_forward")
	require.NoError(t, err)
	assert.Equal(t, SkipForward, ev)
	_, err = ParseEvent("pause")
	assert.True(t, HasCode(err, ErrCodeUnknownEvent))

	d, err := ParseDirection("prev")
	require.NoError(t, err)
	assert.Equal(t, Prev, d)
	d, err = ParseDirection("+1")
	require.NoError(t, err)
	assert.Equal(t, Next, d)
	_, err = ParseDirection("sideways")
	assert.True(t, HasCode(err, ErrCodeBadDirection))
}
