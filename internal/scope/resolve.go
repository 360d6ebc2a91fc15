package scope

import (
	"github.com/roach88/playtree/internal/playtree"
)

// Resolution maps every node and edge to its least enclosing scope.
type Resolution struct {
	// ByNode maps node id to scope index.
	ByNode map[string]int

	// ByEdge maps source id to target id to scope index.
	ByEdge map[string]map[string]int

	// Ambiguous lists node ids whose declared scopes did not form a chain
	// and were resolved by the tie-break, in sorted order.
	Ambiguous []string

	Lattice *Lattice
}

// Node returns the least scope of a node, DefaultScope when unknown.
func (r *Resolution) Node(id string) int {
	if s, ok := r.ByNode[id]; ok {
		return s
	}
	return playtree.DefaultScope
}

// Edge returns the least scope of the edge from -> to, DefaultScope when
// unknown.
func (r *Resolution) Edge(from, to string) int {
	if m, ok := r.ByEdge[from]; ok {
		if s, ok := m[to]; ok {
			return s
		}
	}
	return playtree.DefaultScope
}

// Resolve computes the least scope of every node and of every edge whose
// target exists. An edge is only inside a scope when both endpoints are, so
// its candidates are the intersection of the endpoint scope sets.
func Resolve(t *playtree.Playtree) *Resolution {
	l := NewLattice(t)
	r := &Resolution{
		ByNode:  make(map[string]int, len(t.Nodes)),
		ByEdge:  make(map[string]map[string]int, len(t.Nodes)),
		Lattice: l,
	}

	for _, id := range t.SortedNodeIDs() {
		node := t.Nodes[id]
		if node == nil {
			continue
		}
		r.ByNode[id] = l.Least(node.Scopes)
		if l.Ambiguous(node.Scopes) {
			r.Ambiguous = append(r.Ambiguous, id)
		}

		edges := make(map[string]int, len(node.Next))
		for _, e := range node.Next {
			target := t.Nodes[e.Target]
			if target == nil {
				continue
			}
			if _, dup := edges[e.Target]; dup {
				continue
			}
			edges[e.Target] = l.Least(intersect(node.Scopes, target))
		}
		r.ByEdge[id] = edges
	}
	return r
}

func intersect(scopes []int, other *playtree.Playnode) []int {
	var out []int
	for _, s := range scopes {
		if other.HasScope(s) {
			out = append(out, s)
		}
	}
	return out
}
