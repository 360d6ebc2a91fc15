package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/playtree/internal/playtree"
)

// RoutingWarning reports a cycle of nodes that can never be played.
//
// Cycles are warnings, not errors: the engine's traversal cap turns them
// into a playhead reset rather than a hang, and a cycle that leads nowhere
// may still be an unfinished edit.
type RoutingWarning struct {
	Path    []string `json:"path"`    // Cycle path: ["hub", "relay", "hub"]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning"
}

// AnalyzeRouting finds cycles made only of routing nodes.
//
// A routing node never yields an item: it has no item with a positive
// multiplier and a non-zero limit, or its own limit is 0. A traversal
// that enters a cycle of routing nodes with no edge out of it loops until
// the traversal cap.
//
// The algorithm:
//  1. Build the node -> target graph restricted to routing nodes
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1, or a self-loop, that has no edge
//     leading to a playable node
//
// Output is sorted by the first node of each path.
func AnalyzeRouting(t *playtree.Playtree) []RoutingWarning {
	graph, escapes := buildRoutingGraph(t)
	if len(graph) == 0 {
		return []RoutingWarning{}
	}

	warnings := []RoutingWarning{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		trapped := true
		for _, id := range scc {
			if escapes[id] {
				trapped = false
				break
			}
		}
		if trapped {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Path[0] < warnings[j].Path[0]
	})
	return warnings
}

// routingGraph maps node id -> routing node ids it has edges to.
type routingGraph map[string][]string

// routingOnly reports whether n can never yield an item.
func routingOnly(n *playtree.Playnode) bool {
	if n.Limit == 0 {
		return true
	}
	for _, it := range n.Items {
		if it.Multiplier > 0 && it.Limit != 0 {
			return false
		}
	}
	return true
}

// buildRoutingGraph restricts the tree to routing nodes. escapes marks
// routing nodes with an edge to a playable node.
func buildRoutingGraph(t *playtree.Playtree) (routingGraph, map[string]bool) {
	graph := make(routingGraph)
	escapes := make(map[string]bool)

	for _, id := range t.SortedNodeIDs() {
		n := t.Nodes[id]
		if n == nil || !routingOnly(n) {
			continue
		}
		graph[id] = []string{}
		for _, e := range n.Next {
			target := t.Node(e.Target)
			if target == nil || e.Limit == 0 {
				continue
			}
			if routingOnly(target) {
				graph[id] = append(graph[id], e.Target)
			} else {
				escapes[id] = true
			}
		}
	}
	return graph, escapes
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph routingGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order and each SCC is returned sorted, so the
// result does not depend on map iteration.
func tarjanSCC(graph routingGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for id := range graph {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)
	for _, id := range nodes {
		if _, visited := indices[id]; !visited {
			strongConnect(id)
		}
	}
	return sccs
}

// cycleSCCToWarning converts an SCC to a RoutingWarning with a path that
// walks the cycle from its smallest id.
func cycleSCCToWarning(scc []string, graph routingGraph) RoutingWarning {
	if len(scc) == 1 {
		id := scc[0]
		return RoutingWarning{
			Path:    []string{id, id},
			Message: fmt.Sprintf("routing node loops to itself: %s -> %s", id, id),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return RoutingWarning{
		Path:    path,
		Message: fmt.Sprintf("routing cycle with no playable exit: %s", strings.Join(path, " -> ")),
		Level:   "warning",
	}
}

// reconstructCyclePath follows edges inside the SCC from its first member
// until it returns to the start or runs out of unvisited members.
func reconstructCyclePath(scc []string, graph routingGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool, len(scc))
	for _, id := range scc {
		members[id] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
