package playtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for hashing.
//
// Accepted values are string, int, int64, bool, []any and map[string]any.
// Floats and nulls are rejected: nothing in a playtree needs them, and
// their canonical forms are where implementations disagree.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return writeCanonicalString(buf, val)
	case int:
		fmt.Fprintf(buf, "%d", val)
	case int64:
		fmt.Fprintf(buf, "%d", val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeysRFC8785)
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString writes an NFC-normalized JSON string without HTML
// escaping. U+2028 and U+2029 are written literally, as RFC 8785 requires.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the encoder's \u2028 and \u2029 escapes back into
// literal characters, leaving \\u2028 (an escaped backslash) untouched.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		if data[i] == '\\' && i+1 < len(data) {
			// Copy escape pairs whole so "\\" never starts a false match.
			out = append(out, data[i], data[i+1])
			i++
			continue
		}
		out = append(out, data[i])
	}
	return out
}

// compareKeysRFC8785 orders strings by UTF-16 code units. Go's native string
// comparison is by UTF-8 bytes, which differs for characters outside the BMP.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}

// canonicalMap converts a tree into the plain value shape MarshalCanonical
// accepts. Nil and empty slices map to the same empty array.
func (t *Playtree) canonicalMap() map[string]any {
	nodes := make(map[string]any, len(t.Nodes))
	for id, n := range t.Nodes {
		if n == nil {
			continue
		}
		items := make([]any, len(n.Items))
		for i, it := range n.Items {
			items[i] = map[string]any{
				"id":         it.ID,
				"name":       it.Name,
				"uri":        it.URI,
				"multiplier": it.Multiplier,
				"limit":      it.Limit,
			}
		}
		next := make([]any, len(n.Next))
		for i, e := range n.Next {
			next[i] = map[string]any{
				"target":   e.Target,
				"priority": e.Priority,
				"shares":   e.Weight(),
				"limit":    e.Limit,
			}
		}
		scopes := make([]any, len(n.Scopes))
		for i, s := range n.Scopes {
			scopes[i] = s
		}
		nodes[id] = map[string]any{
			"id":     n.ID,
			"name":   n.Name,
			"kind":   string(n.Kind),
			"items":  items,
			"next":   next,
			"limit":  n.Limit,
			"scopes": scopes,
		}
	}
	scopes := make([]any, len(t.Scopes))
	for i, s := range t.Scopes {
		scopes[i] = map[string]any{"name": s.Name, "color": s.Color}
	}
	roots := make(map[string]any, len(t.Roots))
	for id, r := range t.Roots {
		roots[id] = map[string]any{"index": r.Index, "name": r.Name}
	}
	return map[string]any{
		"id":     t.ID,
		"name":   t.Name,
		"nodes":  nodes,
		"scopes": scopes,
		"roots":  roots,
	}
}
