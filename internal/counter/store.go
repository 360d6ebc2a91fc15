package counter

import (
	"github.com/roach88/playtree/internal/playtree"
)

// Scopes resolves the least enclosing scope of nodes and edges.
// *scope.Resolution satisfies it.
type Scopes interface {
	Node(id string) int
	Edge(from, to string) int
}

// layout is the immutable part of a Store, shared by clones.
type layout struct {
	scopes  Scopes
	keys    []Key
	limits  []int
	index   map[Key]int
	byScope map[int][]int
}

// Store is one set of play counters.
type Store struct {
	*layout
	counts []int

	recording bool
	journal   Delta
}

// New seeds a zeroed counter for every node, item, and edge of t with a
// limit >= 0. Nodes are visited in sorted id order, then items and edges in
// declared order, which fixes the order of Entries. A repeated item id or
// edge target within a node keeps only its first occurrence. Edges to
// missing nodes are not tracked.
func New(t *playtree.Playtree, scopes Scopes) *Store {
	l := &layout{
		scopes:  scopes,
		index:   make(map[Key]int),
		byScope: make(map[int][]int),
	}
	add := func(k Key, limit int) {
		if limit < 0 {
			return
		}
		if _, dup := l.index[k]; dup {
			return
		}
		i := len(l.keys)
		l.keys = append(l.keys, k)
		l.limits = append(l.limits, limit)
		l.index[k] = i
		l.byScope[k.Scope] = append(l.byScope[k.Scope], i)
	}

	for _, id := range t.SortedNodeIDs() {
		node := t.Nodes[id]
		if node == nil {
			continue
		}
		nodeScope := scopes.Node(id)
		add(Key{Scope: nodeScope, Kind: KindNode, Node: id}, node.Limit)
		for _, item := range node.Items {
			add(Key{Scope: nodeScope, Kind: KindItem, Node: id, Sub: item.ID}, item.Limit)
		}
		seen := make(map[string]bool, len(node.Next))
		for _, e := range node.Next {
			if seen[e.Target] || t.Nodes[e.Target] == nil {
				continue
			}
			seen[e.Target] = true
			add(Key{Scope: scopes.Edge(id, e.Target), Kind: KindEdge, Node: id, Sub: e.Target}, e.Limit)
		}
	}

	return &Store{layout: l, counts: make([]int, len(l.keys))}
}

// Clone returns an independent copy of the counts sharing s's layout.
// The clone starts with no journal.
func (s *Store) Clone() *Store {
	return &Store{layout: s.layout, counts: append([]int(nil), s.counts...)}
}

// NodeKey returns the key of a node's play counter.
func (s *Store) NodeKey(node string) Key {
	return Key{Scope: s.scopes.Node(node), Kind: KindNode, Node: node}
}

// ItemKey returns the key of an item's play counter. Items are filed under
// their node's least scope.
func (s *Store) ItemKey(node, item string) Key {
	return Key{Scope: s.scopes.Node(node), Kind: KindItem, Node: node, Sub: item}
}

// EdgeKey returns the key of an edge's traversal counter.
func (s *Store) EdgeKey(from, to string) Key {
	return Key{Scope: s.scopes.Edge(from, to), Kind: KindEdge, Node: from, Sub: to}
}

// Read returns the count and limit of k. ok is false when k is untracked,
// which callers treat as never exhausted.
func (s *Store) Read(k Key) (count, limit int, ok bool) {
	i, ok := s.index[k]
	if !ok {
		return 0, playtree.Unlimited, false
	}
	return s.counts[i], s.limits[i], true
}

// Exhausted reports whether k is tracked and has reached its limit.
func (s *Store) Exhausted(k Key) bool {
	count, limit, ok := s.Read(k)
	return ok && count >= limit
}

// Increment adds one to k. Node and edge counters saturate at their limit;
// item counters do not. It reports whether k is tracked.
func (s *Store) Increment(k Key) bool {
	i, ok := s.index[k]
	if !ok {
		return false
	}
	next := s.counts[i] + 1
	if k.Kind != KindItem && next > s.limits[i] {
		next = s.limits[i]
	}
	s.set(i, next)
	return true
}

func (s *Store) set(i, v int) {
	if s.counts[i] == v {
		return
	}
	if s.recording {
		s.journal = append(s.journal, Change{index: i, before: s.counts[i]})
	}
	s.counts[i] = v
}

// Entries returns every tracked counter in layout order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.keys))
	for i, k := range s.keys {
		out[i] = Entry{Key: k, Count: s.counts[i], Limit: s.limits[i]}
	}
	return out
}

// Equal reports whether s and other hold the same counts over the same layout.
func (s *Store) Equal(other *Store) bool {
	if s.layout != other.layout || len(s.counts) != len(other.counts) {
		return false
	}
	for i := range s.counts {
		if s.counts[i] != other.counts[i] {
			return false
		}
	}
	return true
}
