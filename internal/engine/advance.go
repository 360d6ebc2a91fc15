package engine

import (
	"github.com/roach88/playtree/internal/counter"
	"github.com/roach88/playtree/internal/playtree"
)

// itemEligible reports whether an item can be played: a positive
// multiplier and an item counter below its limit (or untracked).
func itemEligible(c *counter.Store, node *playtree.Playnode, i int) bool {
	item := node.Item(i)
	if item == nil || item.Multiplier <= 0 {
		return false
	}
	return !c.Exhausted(c.ItemKey(node.ID, item.ID))
}

// initialIndex picks the item a playhead starts on when it enters node.
// Sequencers take the first eligible item; selectors draw one. It returns
// false when the node has nothing eligible.
func initialIndex(c *counter.Store, node *playtree.Playnode, rnd Source) (int, bool) {
	if node.Kind == playtree.KindSelector {
		return selectItem(c, node, rnd)
	}
	for i := range node.Items {
		if itemEligible(c, node, i) {
			return i, true
		}
	}
	return -1, false
}

// nextInSequence moves a sequencer on from item at multiplicity mult, where
// mult has already been incremented for the play that just ended.
func nextInSequence(c *counter.Store, node *playtree.Playnode, item, mult int) (int, int, bool) {
	if item < 0 {
		i, ok := initialIndex(c, node, nil)
		return i, 0, ok
	}
	for item < len(node.Items) {
		cur := node.Items[item]
		if mult < cur.Multiplier && itemEligible(c, node, item) {
			return item, mult, true
		}
		item++
		mult = 0
	}
	return -1, 0, false
}

// selectItem draws among eligible items weighted by multiplier. It consumes
// one value from rnd when at least one item is eligible.
func selectItem(c *counter.Store, node *playtree.Playnode, rnd Source) (int, bool) {
	weights := make([]int, len(node.Items))
	eligible := false
	for i, item := range node.Items {
		if itemEligible(c, node, i) {
			weights[i] = item.Multiplier
			eligible = true
		}
	}
	if !eligible {
		return -1, false
	}
	i := weightedPick(weights, draw(rnd))
	return i, i >= 0
}

// advanceWithin runs the intra-node step for a playhead sitting at pos.
// The caller has already counted the finished play.
func advanceWithin(c *counter.Store, node *playtree.Playnode, pos Position, rnd Source) (Position, bool) {
	if node.Kind == playtree.KindSelector {
		i, ok := selectItem(c, node, rnd)
		return Position{Node: node.ID, Item: i}, ok
	}
	i, m, ok := nextInSequence(c, node, pos.Item, pos.Mult+1)
	return Position{Node: node.ID, Item: i, Mult: m}, ok
}
