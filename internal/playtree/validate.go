package playtree

import (
	"fmt"
	"sort"
)

// Validation issue codes (P100-P199).
const (
	// Structural errors (P101-P109): the file describes something the
	// engine cannot interpret.
	ErrUnknownKind      = "P101" // node kind is not sequencer/selector
	ErrNegativeWeight   = "P102" // multiplier or shares below zero
	ErrInvalidLimit     = "P103" // limit below Unlimited
	ErrDuplicateItem    = "P104" // two items in one node share an id
	ErrScopeOutOfRange  = "P105" // node references an undeclared scope
	ErrNodeIDMismatch   = "P106" // node id differs from its map key
	ErrEmptyItemID      = "P107" // item without an id
	ErrDuplicateRootIdx = "P108" // two roots share an index

	// Configuration gaps (P110-P119): load skips what these describe.
	WarnDanglingEdge   = "P110" // edge target is not a node
	WarnMissingRoot    = "P111" // root names a missing node
	WarnDuplicateEdge  = "P112" // two edges from one node share a target
	WarnNoRoots        = "P113" // tree spawns no playheads
	WarnEmptyNode      = "P114" // node has no items (pure routing node)
	WarnUnreachableLim = "P115" // limit of 0 makes the entity unplayable
)

// Severity grades an Issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding.
type Issue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("[%s] %s: %s", i.Code, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks a tree and returns every issue found, in deterministic
// order. It does not stop at the first problem.
func Validate(t *Playtree) []Issue {
	var issues []Issue
	add := func(code string, sev Severity, path, format string, args ...any) {
		issues = append(issues, Issue{
			Code:     code,
			Severity: sev,
			Path:     path,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for _, id := range t.SortedNodeIDs() {
		n := t.Nodes[id]
		path := "nodes." + id
		if n == nil {
			add(ErrNodeIDMismatch, SeverityError, path, "node is null")
			continue
		}
		if n.ID != id {
			add(ErrNodeIDMismatch, SeverityError, path, "node id %q does not match key %q", n.ID, id)
		}
		if !n.Kind.Valid() {
			add(ErrUnknownKind, SeverityError, path+".kind", "unknown kind %q (must be sequencer or selector)", n.Kind)
		}
		if n.Limit < Unlimited {
			add(ErrInvalidLimit, SeverityError, path+".limit", "limit %d is below -1", n.Limit)
		} else if n.Limit == 0 {
			add(WarnUnreachableLim, SeverityWarning, path+".limit", "limit 0 makes the node a pass-through")
		}
		for _, s := range n.Scopes {
			if s < 0 || s >= len(t.Scopes) {
				add(ErrScopeOutOfRange, SeverityError, path+".scopes", "scope %d is not declared (have %d scopes)", s, len(t.Scopes))
			}
		}
		if len(n.Items) == 0 {
			add(WarnEmptyNode, SeverityWarning, path+".items", "node has no items and only routes")
		}

		seenItems := make(map[string]bool, len(n.Items))
		for i, it := range n.Items {
			ipath := fmt.Sprintf("%s.items[%d]", path, i)
			if it.ID == "" {
				add(ErrEmptyItemID, SeverityError, ipath+".id", "item id is required")
			} else if seenItems[it.ID] {
				add(ErrDuplicateItem, SeverityError, ipath+".id", "duplicate item id %q", it.ID)
			}
			seenItems[it.ID] = true
			if it.Multiplier < 0 {
				add(ErrNegativeWeight, SeverityError, ipath+".multiplier", "multiplier %d is negative", it.Multiplier)
			}
			if it.Limit < Unlimited {
				add(ErrInvalidLimit, SeverityError, ipath+".limit", "limit %d is below -1", it.Limit)
			}
		}

		seenTargets := make(map[string]bool, len(n.Next))
		for i, e := range n.Next {
			epath := fmt.Sprintf("%s.next[%d]", path, i)
			if _, ok := t.Nodes[e.Target]; !ok {
				add(WarnDanglingEdge, SeverityWarning, epath+".target", "target %q is not a node; edge is ignored", e.Target)
			}
			if seenTargets[e.Target] {
				add(WarnDuplicateEdge, SeverityWarning, epath+".target", "second edge to %q; only the first is used", e.Target)
			}
			seenTargets[e.Target] = true
			if e.Shares < 0 {
				add(ErrNegativeWeight, SeverityError, epath+".shares", "shares %d is negative", e.Shares)
			}
			if e.Limit < Unlimited {
				add(ErrInvalidLimit, SeverityError, epath+".limit", "limit %d is below -1", e.Limit)
			}
		}
	}

	if len(t.Roots) == 0 {
		add(WarnNoRoots, SeverityWarning, "roots", "no roots declared; no playheads will spawn")
	}
	rootIDs := make([]string, 0, len(t.Roots))
	for id := range t.Roots {
		rootIDs = append(rootIDs, id)
	}
	sort.Strings(rootIDs)
	seenIdx := make(map[int]string, len(rootIDs))
	for _, id := range rootIDs {
		if _, ok := t.Nodes[id]; !ok {
			add(WarnMissingRoot, SeverityWarning, "roots."+id, "root names missing node %q; playhead is skipped", id)
		}
		idx := t.Roots[id].Index
		if other, dup := seenIdx[idx]; dup {
			add(ErrDuplicateRootIdx, SeverityError, "roots."+id+".index", "index %d already used by root %q", idx, other)
		}
		seenIdx[idx] = id
	}

	return issues
}
