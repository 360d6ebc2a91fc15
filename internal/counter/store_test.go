package counter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/playtree/internal/playtree"
	"github.com/roach88/playtree/internal/scope"
)

// scopedTree is x (scope 0) -> y (no scope), with a mix of limited and
// unlimited entities.
func scopedTree() *playtree.Playtree {
	return &playtree.Playtree{
		Scopes: []playtree.Playscope{{Name: "S"}},
		Nodes: map[string]*playtree.Playnode{
			"x": {
				ID: "x", Kind: playtree.KindSequencer, Limit: 3, Scopes: []int{0},
				Items: []playtree.Playitem{
					{ID: "a", Multiplier: 1, Limit: 2},
					{ID: "b", Multiplier: 1, Limit: playtree.Unlimited},
				},
				Next: []playtree.Playedge{
					{Target: "y", Limit: 1},
					{Target: "y", Limit: 9},
					{Target: "ghost", Limit: 1},
				},
			},
			"y": {
				ID: "y", Kind: playtree.KindSequencer, Limit: 1,
				Items: []playtree.Playitem{{ID: "c", Multiplier: 1, Limit: 4}},
			},
		},
		Roots: map[string]playtree.Playroot{"x": {Index: 0}},
	}
}

func newStore(t *playtree.Playtree) *Store {
	return New(t, scope.Resolve(t))
}

// TestNew_SeedsLimitedEntities tests that only limited entities get counters.
func TestNew_SeedsLimitedEntities(t *testing.T) {
	s := newStore(scopedTree())

	keys := make([]string, 0)
	for _, e := range s.Entries() {
		assert.Zero(t, e.Count)
		keys = append(keys, e.Key.String())
	}
	assert.Equal(t, []string{
		"node[0] x",
		"item[0] x/a",
		"edge[-1] x->y",
		"node[-1] y",
		"item[-1] y/c",
	}, keys)

	_, limit, ok := s.Read(s.EdgeKey("x", "y"))
	require.True(t, ok)
	assert.Equal(t, 1, limit, "first edge to a target wins")

	_, limit, ok = s.Read(s.ItemKey("x", "b"))
	assert.False(t, ok, "unlimited items are untracked")
	assert.Equal(t, playtree.Unlimited, limit)

	_, _, ok = s.Read(s.EdgeKey("x", "ghost"))
	assert.False(t, ok, "dangling edges are untracked")
}

// TestRead_WrongScopeIsUntracked tests that keys carry their scope.
func TestRead_WrongScopeIsUntracked(t *testing.T) {
	s := newStore(scopedTree())

	_, _, ok := s.Read(Key{Scope: playtree.DefaultScope, Kind: KindNode, Node: "x"})
	assert.False(t, ok)
	_, _, ok = s.Read(Key{Scope: 0, Kind: KindNode, Node: "x"})
	assert.True(t, ok)
}

// TestIncrement_Saturation tests that nodes and edges saturate while items
// do not.
func TestIncrement_Saturation(t *testing.T) {
	s := newStore(scopedTree())

	for i := 0; i < 5; i++ {
		assert.True(t, s.Increment(s.NodeKey("x")))
		assert.True(t, s.Increment(s.EdgeKey("x", "y")))
		assert.True(t, s.Increment(s.ItemKey("x", "a")))
	}

	count, limit, _ := s.Read(s.NodeKey("x"))
	assert.Equal(t, limit, count)
	count, limit, _ = s.Read(s.EdgeKey("x", "y"))
	assert.Equal(t, limit, count)
	count, _, _ = s.Read(s.ItemKey("x", "a"))
	assert.Equal(t, 5, count)

	assert.True(t, s.Exhausted(s.NodeKey("x")))
	assert.True(t, s.Exhausted(s.ItemKey("x", "a")))
}

// TestIncrement_UntrackedIsNoop tests writes against unlimited entities.
func TestIncrement_UntrackedIsNoop(t *testing.T) {
	s := newStore(scopedTree())
	before := s.Entries()

	assert.False(t, s.Increment(s.ItemKey("x", "b")))
	assert.False(t, s.Increment(s.NodeKey("missing")))
	assert.False(t, s.Exhausted(s.ItemKey("x", "b")))
	assert.Equal(t, before, s.Entries())
}

// TestCacheAndZero_Restore tests the scope exit round trip.
func TestCacheAndZero_Restore(t *testing.T) {
	s := newStore(scopedTree())
	s.Increment(s.NodeKey("x"))
	s.Increment(s.ItemKey("x", "a"))
	s.Increment(s.ItemKey("x", "a"))
	s.Increment(s.NodeKey("y"))
	want := s.Entries()

	snap := s.CacheAndZero(0)
	assert.Equal(t, 0, snap.Scope)
	require.Len(t, snap.Entries, 2)
	assert.Equal(t, 1, snap.Entries[0].Count)
	assert.Equal(t, 2, snap.Entries[1].Count)

	for _, e := range s.ScopeEntries(0) {
		assert.Zero(t, e.Count, e.Key.String())
	}
	count, _, _ := s.Read(s.NodeKey("y"))
	assert.Equal(t, 1, count, "other scopes are untouched")

	s.Restore(snap)
	assert.Equal(t, want, s.Entries())
}

// TestCacheAndZero_EmptyScope tests scopes without tracked counters.
func TestCacheAndZero_EmptyScope(t *testing.T) {
	s := newStore(scopedTree())

	snap := s.CacheAndZero(42)
	assert.Equal(t, 42, snap.Scope)
	assert.Empty(t, snap.Entries)
}

// TestZeroScoped tests that default-scope counters survive.
func TestZeroScoped(t *testing.T) {
	s := newStore(scopedTree())
	s.Increment(s.NodeKey("x"))
	s.Increment(s.NodeKey("y"))
	s.Increment(s.EdgeKey("x", "y"))

	s.ZeroScoped()

	count, _, _ := s.Read(s.NodeKey("x"))
	assert.Zero(t, count)
	count, _, _ = s.Read(s.NodeKey("y"))
	assert.Equal(t, 1, count)
	count, _, _ = s.Read(s.EdgeKey("x", "y"))
	assert.Equal(t, 1, count)
}

// TestClone_IsIndependent tests that clones share layout but not counts.
func TestClone_IsIndependent(t *testing.T) {
	s := newStore(scopedTree())
	c := s.Clone()

	c.Increment(c.NodeKey("y"))

	count, _, _ := s.Read(s.NodeKey("y"))
	assert.Zero(t, count)
	assert.False(t, s.Equal(c))

	s.Increment(s.NodeKey("y"))
	assert.True(t, s.Equal(c))
}
