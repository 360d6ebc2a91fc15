package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/playtree/internal/playtree"
)

// CompilePlaytree maps a CUE value onto a playtree.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value should be the playtree struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`playtree: { nodes: { ... }, roots: { ... } }`)
//	tree, err := CompilePlaytree(v.LookupPath(cue.ParsePath("playtree")))
//
// Node ids default to their field label. Missing limits default to -1 and
// missing multipliers to 1. kind is required on every node.
func CompilePlaytree(v cue.Value) (*playtree.Playtree, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	t := &playtree.Playtree{
		Nodes: make(map[string]*playtree.Playnode),
		Roots: make(map[string]playtree.Playroot),
	}
	var err error
	if t.ID, err = optString(v, "id"); err != nil {
		return nil, err
	}
	if t.Name, err = optString(v, "name"); err != nil {
		return nil, err
	}

	if t.Scopes, err = parseScopes(v); err != nil {
		return nil, err
	}
	if err := parseNodes(v, t); err != nil {
		return nil, err
	}
	if err := parseRoots(v, t); err != nil {
		return nil, err
	}
	return t, nil
}

// parseScopes reads the ordered scope table. Order is identity.
func parseScopes(v cue.Value) ([]playtree.Playscope, error) {
	scopesVal := v.LookupPath(cue.ParsePath("scopes"))
	if !scopesVal.Exists() {
		return nil, nil
	}
	iter, err := scopesVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var scopes []playtree.Playscope
	for iter.Next() {
		sv := iter.Value()
		name, err := reqString(sv, "name", fmt.Sprintf("scopes[%d]", len(scopes)))
		if err != nil {
			return nil, err
		}
		color, err := optString(sv, "color")
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, playtree.Playscope{Name: name, Color: color})
	}
	return scopes, nil
}

func parseNodes(v cue.Value, t *playtree.Playtree) error {
	nodesVal := v.LookupPath(cue.ParsePath("nodes"))
	if !nodesVal.Exists() {
		return nil
	}
	iter, err := nodesVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		label := iter.Label()
		nv := iter.Value()
		field := "nodes." + label

		n := &playtree.Playnode{ID: label}
		id, err := optString(nv, "id")
		if err != nil {
			return err
		}
		if id != "" {
			n.ID = id
		}
		if n.Name, err = optString(nv, "name"); err != nil {
			return err
		}

		kind, err := reqString(nv, "kind", field)
		if err != nil {
			return err
		}
		n.Kind = playtree.NodeKind(kind)
		if !n.Kind.Valid() {
			return &CompileError{
				Field:   field + ".kind",
				Message: fmt.Sprintf("kind must be %q or %q, got %q", playtree.KindSequencer, playtree.KindSelector, kind),
				Pos:     nv.LookupPath(cue.ParsePath("kind")).Pos(),
			}
		}

		if n.Limit, err = optInt(nv, "limit", playtree.Unlimited); err != nil {
			return err
		}
		if n.Scopes, err = optIntList(nv, "scopes"); err != nil {
			return err
		}
		if n.Items, err = parseItems(nv, field); err != nil {
			return err
		}
		if n.Next, err = parseEdges(nv, field); err != nil {
			return err
		}
		t.Nodes[label] = n
	}
	return nil
}

func parseItems(nv cue.Value, field string) ([]playtree.Playitem, error) {
	itemsVal := nv.LookupPath(cue.ParsePath("items"))
	if !itemsVal.Exists() {
		return nil, nil
	}
	iter, err := itemsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var items []playtree.Playitem
	for iter.Next() {
		iv := iter.Value()
		at := fmt.Sprintf("%s.items[%d]", field, len(items))

		var it playtree.Playitem
		if it.ID, err = reqString(iv, "id", at); err != nil {
			return nil, err
		}
		if it.Name, err = optString(iv, "name"); err != nil {
			return nil, err
		}
		if it.URI, err = optString(iv, "uri"); err != nil {
			return nil, err
		}
		if it.Multiplier, err = optInt(iv, "multiplier", 1); err != nil {
			return nil, err
		}
		if it.Limit, err = optInt(iv, "limit", playtree.Unlimited); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func parseEdges(nv cue.Value, field string) ([]playtree.Playedge, error) {
	nextVal := nv.LookupPath(cue.ParsePath("next"))
	if !nextVal.Exists() {
		return nil, nil
	}
	iter, err := nextVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var edges []playtree.Playedge
	for iter.Next() {
		ev := iter.Value()
		at := fmt.Sprintf("%s.next[%d]", field, len(edges))

		var e playtree.Playedge
		if e.Target, err = reqString(ev, "target", at); err != nil {
			return nil, err
		}
		if e.Priority, err = optInt(ev, "priority", 0); err != nil {
			return nil, err
		}
		if e.Shares, err = optInt(ev, "shares", 0); err != nil {
			return nil, err
		}
		if e.Limit, err = optInt(ev, "limit", playtree.Unlimited); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func parseRoots(v cue.Value, t *playtree.Playtree) error {
	rootsVal := v.LookupPath(cue.ParsePath("roots"))
	if !rootsVal.Exists() {
		return nil
	}
	iter, err := rootsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		rv := iter.Value()
		var r playtree.Playroot
		if r.Index, err = optInt(rv, "index", 0); err != nil {
			return err
		}
		if r.Name, err = optString(rv, "name"); err != nil {
			return err
		}
		t.Roots[iter.Label()] = r
	}
	return nil
}

func optString(v cue.Value, name string) (string, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return "", nil
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func reqString(v cue.Value, name, field string) (string, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return "", &CompileError{
			Field:   field + "." + name,
			Message: name + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := f.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// optInt reads an integer field. Floats are rejected by the CUE Int64
// conversion, which keeps every count and limit integral.
func optInt(v cue.Value, name string, def int) (int, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return def, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func optIntList(v cue.Value, name string) ([]int, error) {
	f := v.LookupPath(cue.ParsePath(name))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []int
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, int(n))
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
