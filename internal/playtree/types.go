package playtree

import "sort"

// Unlimited marks a limit with no cap.
const Unlimited = -1

// DefaultScope is the implicit scope every node belongs to.
const DefaultScope = -1

// NodeKind selects how a node picks its next item.
type NodeKind string

const (
	// KindSequencer plays items in declared order, repeating each one
	// Multiplier times.
	KindSequencer NodeKind = "sequencer"

	// KindSelector draws items at random, weighted by Multiplier.
	KindSelector NodeKind = "selector"
)

// Valid reports whether k is a known node kind.
func (k NodeKind) Valid() bool {
	return k == KindSequencer || k == KindSelector
}

// Playtree is the full authored graph.
type Playtree struct {
	ID     string               `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string               `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes  map[string]*Playnode `json:"nodes" yaml:"nodes"`
	Scopes []Playscope          `json:"scopes" yaml:"scopes"`
	Roots  map[string]Playroot  `json:"roots" yaml:"roots"`
}

// Playnode is a graph vertex holding playable items and routing rules.
type Playnode struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Kind   NodeKind   `json:"kind" yaml:"kind"`
	Items  []Playitem `json:"items" yaml:"items"`
	Next   []Playedge `json:"next" yaml:"next"`
	Limit  int        `json:"limit" yaml:"limit"`
	Scopes []int      `json:"scopes" yaml:"scopes"`
}

// Playitem is a leaf playable unit inside a node.
type Playitem struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	URI  string `json:"uri,omitempty" yaml:"uri,omitempty"`

	// Multiplier is a repeat count in sequencer nodes and a relative
	// weight in selector nodes.
	Multiplier int `json:"multiplier" yaml:"multiplier"`
	Limit      int `json:"limit" yaml:"limit"`
}

// Playedge is a directed, prioritized, weighted connection. The source node
// is implicit: it is the node whose Next list holds the edge.
type Playedge struct {
	Target   string `json:"target" yaml:"target"`
	Priority int    `json:"priority" yaml:"priority"`

	// Shares is the relative weight within the edge's priority group.
	// Zero means the field was absent; see Weight.
	Shares int `json:"shares,omitempty" yaml:"shares,omitempty"`
	Limit  int `json:"limit" yaml:"limit"`
}

// Weight returns the edge's draw weight, defaulting absent shares to 1.
func (e Playedge) Weight() int {
	if e.Shares <= 0 {
		return 1
	}
	return e.Shares
}

// Playscope is a named, colored tag. Its identity is its index in
// Playtree.Scopes.
type Playscope struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Playroot marks a node as a playhead spawn point.
type Playroot struct {
	Index int    `json:"index" yaml:"index"`
	Name  string `json:"name" yaml:"name"`
}

// EdgeRef identifies an edge by its endpoints.
type EdgeRef struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

func (r EdgeRef) String() string {
	return r.From + "->" + r.To
}

// SortedNodeIDs returns node ids in byte order. Every iteration over
// Nodes that can affect engine output goes through this.
func (t *Playtree) SortedNodeIDs() []string {
	ids := make([]string, 0, len(t.Nodes))
	for id := range t.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Node returns the node with the given id, or nil.
func (t *Playtree) Node(id string) *Playnode {
	if t == nil || t.Nodes == nil {
		return nil
	}
	return t.Nodes[id]
}

// ScopeName returns the display name of a scope index.
func (t *Playtree) ScopeName(idx int) string {
	if idx == DefaultScope {
		return "default"
	}
	if idx < 0 || idx >= len(t.Scopes) {
		return "unknown"
	}
	return t.Scopes[idx].Name
}

// Item returns the item at index i, or nil when i is out of range.
func (n *Playnode) Item(i int) *Playitem {
	if n == nil || i < 0 || i >= len(n.Items) {
		return nil
	}
	return &n.Items[i]
}

// HasScope reports whether the node is tagged with scope s.
// Every node belongs to DefaultScope.
func (n *Playnode) HasScope(s int) bool {
	if s == DefaultScope {
		return true
	}
	for _, own := range n.Scopes {
		if own == s {
			return true
		}
	}
	return false
}

// ScopesNotIn returns the node's scopes that other lacks, in ascending order.
func (n *Playnode) ScopesNotIn(other *Playnode) []int {
	var out []int
	for _, s := range sortedUnique(n.Scopes) {
		if !other.HasScope(s) {
			out = append(out, s)
		}
	}
	return out
}

// Edge returns the first edge from n to target, or nil.
func (n *Playnode) Edge(target string) *Playedge {
	for i := range n.Next {
		if n.Next[i].Target == target {
			return &n.Next[i]
		}
	}
	return nil
}

// sortedUnique returns a sorted copy of s with duplicates removed.
func sortedUnique(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	out := append([]int(nil), s...)
	sort.Ints(out)
	w := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[w-1] {
			out[w] = out[i]
			w++
		}
	}
	return out[:w]
}

// SortedScopes returns the node's declared scopes, sorted and deduplicated.
func (n *Playnode) SortedScopes() []int {
	return sortedUnique(n.Scopes)
}
