package scope

import (
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/roach88/playtree/internal/playtree"
)

// Lattice is the precomputed superset order over a tree's scopes.
type Lattice struct {
	nodeIndex map[string]uint
	members   []*bitset.BitSet // members[s]: nodes tagged with scope s
	above     []*bitset.BitSet // above[s]: scopes t with members[t] ⊇ members[s]
}

// NewLattice builds the membership bitsets and the superset relation.
// Scope indexes outside the declared range are ignored.
func NewLattice(t *playtree.Playtree) *Lattice {
	ids := t.SortedNodeIDs()
	n := uint(len(ids))
	k := len(t.Scopes)

	l := &Lattice{
		nodeIndex: make(map[string]uint, len(ids)),
		members:   make([]*bitset.BitSet, k),
		above:     make([]*bitset.BitSet, k),
	}
	for s := 0; s < k; s++ {
		l.members[s] = bitset.New(n)
	}
	for i, id := range ids {
		l.nodeIndex[id] = uint(i)
		node := t.Nodes[id]
		if node == nil {
			continue
		}
		for _, s := range node.Scopes {
			if s >= 0 && s < k {
				l.members[s].Set(uint(i))
			}
		}
	}
	for s := 0; s < k; s++ {
		l.above[s] = bitset.New(uint(k))
		for u := 0; u < k; u++ {
			if l.members[u].IsSuperSet(l.members[s]) {
				l.above[s].Set(uint(u))
			}
		}
	}
	return l
}

// Len returns the number of declared scopes.
func (l *Lattice) Len() int {
	return len(l.members)
}

func (l *Lattice) valid(s int) bool {
	return s >= 0 && s < len(l.members)
}

// Superset reports whether scope a contains every node of scope b.
// DefaultScope is a superset of every scope; every scope is a superset of
// itself.
func (l *Lattice) Superset(a, b int) bool {
	switch {
	case a == b:
		return true
	case a == playtree.DefaultScope:
		return true
	case b == playtree.DefaultScope:
		return false
	case !l.valid(a) || !l.valid(b):
		return false
	}
	return l.above[b].Test(uint(a))
}

// StrictSuperset reports Superset(a, b) with unequal membership.
func (l *Lattice) StrictSuperset(a, b int) bool {
	if !l.Superset(a, b) {
		return false
	}
	if a == playtree.DefaultScope || b == playtree.DefaultScope {
		return a != b
	}
	return !l.members[a].Equal(l.members[b])
}

// Size returns the number of nodes tagged with s. DefaultScope reports the
// node count of the whole tree.
func (l *Lattice) Size(s int) int {
	if s == playtree.DefaultScope {
		return len(l.nodeIndex)
	}
	if !l.valid(s) {
		return 0
	}
	return int(l.members[s].Count())
}

// Contains reports whether nodeID is tagged with scope s.
func (l *Lattice) Contains(s int, nodeID string) bool {
	i, ok := l.nodeIndex[nodeID]
	if !ok {
		return false
	}
	if s == playtree.DefaultScope {
		return true
	}
	return l.valid(s) && l.members[s].Test(i)
}

// minimal returns the candidates no other candidate sits strictly below,
// deduplicated and ascending.
func (l *Lattice) minimal(candidates []int) []int {
	var valid []int
	seen := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		if l.valid(c) && !seen[c] {
			seen[c] = true
			valid = append(valid, c)
		}
	}
	sort.Ints(valid)

	var out []int
	for _, c := range valid {
		isMin := true
		for _, d := range valid {
			if d != c && l.StrictSuperset(c, d) {
				isMin = false
				break
			}
		}
		if isMin {
			out = append(out, c)
		}
	}
	return out
}

// Least returns the most specific scope among candidates, applying the
// package tie-break when the candidates do not form a chain.
func (l *Lattice) Least(candidates []int) int {
	mins := l.minimal(candidates)
	if len(mins) == 0 {
		return playtree.DefaultScope
	}
	best := mins[0]
	for _, c := range mins[1:] {
		if l.Size(c) < l.Size(best) {
			best = c
		}
	}
	return best
}

// Ambiguous reports whether the candidates have more than one minimal
// element with distinct membership, i.e. whether the tie-break decided.
func (l *Lattice) Ambiguous(candidates []int) bool {
	mins := l.minimal(candidates)
	for i := 1; i < len(mins); i++ {
		if !l.members[mins[i]].Equal(l.members[mins[0]]) {
			return true
		}
	}
	return false
}
