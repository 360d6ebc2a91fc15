package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/playtree/internal/playtree"
)

// tagged builds a tree whose nodes carry the given scopes and no items.
func tagged(scopeCount int, nodes map[string][]int) *playtree.Playtree {
	t := &playtree.Playtree{
		Nodes: make(map[string]*playtree.Playnode, len(nodes)),
		Roots: map[string]playtree.Playroot{},
	}
	for i := 0; i < scopeCount; i++ {
		t.Scopes = append(t.Scopes, playtree.Playscope{Name: string(rune('A' + i))})
	}
	for id, scopes := range nodes {
		t.Nodes[id] = &playtree.Playnode{
			ID:     id,
			Kind:   playtree.KindSequencer,
			Limit:  playtree.Unlimited,
			Scopes: scopes,
		}
	}
	return t
}

// TestLattice_Superset tests the derived superset order on a nested chain.
func TestLattice_Superset(t *testing.T) {
	// Scope 0 holds a, b, c. Scope 1 holds a, b. Scope 2 holds a.
	l := NewLattice(tagged(3, map[string][]int{
		"a": {0, 1, 2},
		"b": {0, 1},
		"c": {0},
	}))

	assert.True(t, l.Superset(0, 1))
	assert.True(t, l.Superset(1, 2))
	assert.True(t, l.Superset(0, 2))
	assert.False(t, l.Superset(2, 0))
	assert.False(t, l.Superset(1, 0))

	assert.True(t, l.Superset(1, 1), "every scope contains itself")
	assert.True(t, l.Superset(playtree.DefaultScope, 2), "default contains everything")
	assert.False(t, l.Superset(2, playtree.DefaultScope))

	assert.Equal(t, 3, l.Size(0))
	assert.Equal(t, 1, l.Size(2))
	assert.Equal(t, 3, l.Size(playtree.DefaultScope))
	assert.Equal(t, 3, l.Len())
}

// TestLattice_IgnoresOutOfRange tests that invalid scope indexes never resolve.
func TestLattice_IgnoresOutOfRange(t *testing.T) {
	l := NewLattice(tagged(1, map[string][]int{"a": {0, 7, -4}}))

	assert.Equal(t, 1, l.Size(0))
	assert.Equal(t, 0, l.Size(7))
	assert.False(t, l.Superset(7, 0))
	assert.Equal(t, 0, l.Least([]int{7, 0, -4}))
	assert.Equal(t, playtree.DefaultScope, l.Least([]int{7}))
}

// TestLattice_Contains tests node membership lookups.
func TestLattice_Contains(t *testing.T) {
	l := NewLattice(tagged(2, map[string][]int{"a": {0}, "b": {1}}))

	assert.True(t, l.Contains(0, "a"))
	assert.False(t, l.Contains(0, "b"))
	assert.True(t, l.Contains(playtree.DefaultScope, "b"))
	assert.False(t, l.Contains(0, "missing"))
}

// TestLattice_Least tests least scope selection, including non-chain sets.
func TestLattice_Least(t *testing.T) {
	// Scope 0 = {a,b,c,d}, scope 1 = {a,b}, scope 2 = {a,c,d},
	// scope 3 = {a,b} (same members as 1), scope 4 = {a}.
	l := NewLattice(tagged(5, map[string][]int{
		"a": {0, 1, 2, 3, 4},
		"b": {0, 1, 3},
		"c": {0, 2},
		"d": {0, 2},
	}))

	tests := []struct {
		name       string
		candidates []int
		want       int
		ambiguous  bool
	}{
		{"empty resolves to default", nil, playtree.DefaultScope, false},
		{"single", []int{2}, 2, false},
		{"chain picks innermost", []int{0, 1}, 1, false},
		{"chain order does not matter", []int{1, 0}, 1, false},
		{"deepest wins", []int{0, 1, 2, 4}, 4, false},
		{"incomparable picks fewer members", []int{2, 1}, 1, true},
		{"incomparable with superset", []int{0, 2, 1}, 1, true},
		{"equal members picks lower index", []int{3, 1}, 1, false},
		{"duplicates", []int{2, 2, 0}, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Least(tt.candidates))
			assert.Equal(t, tt.ambiguous, l.Ambiguous(tt.candidates))
		})
	}
}

// TestLattice_LeastIsMaximallySpecific tests that the chosen scope is never a
// strict superset of another candidate.
func TestLattice_LeastIsMaximallySpecific(t *testing.T) {
	tree := tagged(4, map[string][]int{
		"a": {0, 1, 2, 3},
		"b": {0, 1},
		"c": {0, 2},
		"d": {2, 3},
		"e": {3},
	})
	l := NewLattice(tree)

	for _, id := range tree.SortedNodeIDs() {
		scopes := tree.Nodes[id].Scopes
		least := l.Least(scopes)
		require.Contains(t, append([]int{playtree.DefaultScope}, scopes...), least, "node %s", id)
		for _, other := range scopes {
			assert.False(t, l.StrictSuperset(least, other),
				"node %s: least %d strictly contains candidate %d", id, least, other)
		}
	}
}
