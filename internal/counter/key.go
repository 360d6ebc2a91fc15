package counter

import "fmt"

// Kind is the tier a counter belongs to.
type Kind uint8

const (
	KindNode Kind = iota
	KindItem
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindItem:
		return "item"
	case KindEdge:
		return "edge"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Key addresses one counter. Sub is the item id for KindItem, the target
// node id for KindEdge, and empty for KindNode.
type Key struct {
	Scope int
	Kind  Kind
	Node  string
	Sub   string
}

func (k Key) String() string {
	switch k.Kind {
	case KindItem:
		return fmt.Sprintf("item[%d] %s/%s", k.Scope, k.Node, k.Sub)
	case KindEdge:
		return fmt.Sprintf("edge[%d] %s->%s", k.Scope, k.Node, k.Sub)
	}
	return fmt.Sprintf("node[%d] %s", k.Scope, k.Node)
}

// Entry is a counter value together with its key and limit.
type Entry struct {
	Key   Key `json:"key"`
	Count int `json:"count"`
	Limit int `json:"limit"`
}

// Exhausted reports whether the count has reached the limit.
func (e Entry) Exhausted() bool {
	return e.Count >= e.Limit
}
