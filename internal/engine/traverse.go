package engine

import (
	"sort"

	"github.com/roach88/playtree/internal/counter"
	"github.com/roach88/playtree/internal/playtree"
)

// traversal is the result of a successful edge walk.
type traversal struct {
	landing Position
	route   []playtree.EdgeRef
}

// candidateEdges returns the node's edges that lead to existing nodes,
// first occurrence per target, stably ordered by ascending priority.
func candidateEdges(t *playtree.Playtree, node *playtree.Playnode) []playtree.Playedge {
	seen := make(map[string]bool, len(node.Next))
	out := make([]playtree.Playedge, 0, len(node.Next))
	for _, e := range node.Next {
		if seen[e.Target] || t.Node(e.Target) == nil {
			continue
		}
		seen[e.Target] = true
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// pickEdge scans priority groups in order and draws, weighted by shares,
// among the eligible edges of the first group that has any. It consumes
// one value from rnd only when such a group exists.
func pickEdge(t *playtree.Playtree, c *counter.Store, node *playtree.Playnode, rnd Source) (playtree.Playedge, bool) {
	edges := candidateEdges(t, node)
	for start := 0; start < len(edges); {
		end := start
		for end < len(edges) && edges[end].Priority == edges[start].Priority {
			end++
		}
		group := edges[start:end]
		weights := make([]int, len(group))
		eligible := false
		for i, e := range group {
			if !c.Exhausted(c.EdgeKey(node.ID, e.Target)) {
				weights[i] = e.Weight()
				eligible = true
			}
		}
		if eligible {
			if i := weightedPick(weights, draw(rnd)); i >= 0 {
				return group[i], true
			}
		}
		start = end
	}
	return playtree.Playedge{}, false
}

// traverse walks edges from the playhead's node until it lands on a node
// with a playable item. Nodes at their play limit and nodes with no
// eligible item are passed through. Counter changes go to the store's
// journal; the caller rolls them back when traverse fails.
func (e *Engine) traverse(p *Playhead, r Randoms) (traversal, error) {
	c := p.Counters
	guard := NewTraversalGuard(e.maxSteps)
	src := e.tree.Node(p.Node)
	var route []playtree.EdgeRef

	for {
		if err := guard.Check(p.ID); err != nil {
			return traversal{route: route}, err
		}
		edge, ok := pickEdge(e.tree, c, src, r.Edge)
		if !ok {
			return traversal{route: route}, errNoEligibleEdge(p.ID, src.ID)
		}
		target := e.tree.Node(edge.Target)
		ref := playtree.EdgeRef{From: src.ID, To: target.ID}
		route = append(route, ref)

		c.Increment(c.EdgeKey(src.ID, target.ID))
		for _, s := range src.ScopesNotIn(target) {
			c.CacheAndZero(s)
		}

		if c.Exhausted(c.NodeKey(target.ID)) {
			e.log.Debug("pass through", "playhead", p.ID, "node", target.ID, "reason", "node limit")
			src = target
			continue
		}
		item, ok := initialIndex(c, target, r.Selector)
		if !ok {
			e.log.Debug("pass through", "playhead", p.ID, "node", target.ID, "reason", "no eligible item")
			src = target
			continue
		}

		c.Increment(c.NodeKey(target.ID))
		return traversal{
			landing: Position{Node: target.ID, Item: item},
			route:   route,
		}, nil
	}
}
