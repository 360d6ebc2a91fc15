package playtree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a serialization format for playtrees.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported playtree extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// wire types carry pointers so that absent fields can be told apart from
// explicit zeros. An absent limit means Unlimited; an absent multiplier
// means 1.
type wireTree struct {
	ID     string              `json:"id" yaml:"id"`
	Name   string              `json:"name" yaml:"name"`
	Nodes  map[string]wireNode `json:"nodes" yaml:"nodes"`
	Scopes []Playscope         `json:"scopes" yaml:"scopes"`
	Roots  map[string]Playroot `json:"roots" yaml:"roots"`
}

type wireNode struct {
	ID     string     `json:"id" yaml:"id"`
	Name   string     `json:"name" yaml:"name"`
	Kind   NodeKind   `json:"kind" yaml:"kind"`
	Items  []wireItem `json:"items" yaml:"items"`
	Next   []wireEdge `json:"next" yaml:"next"`
	Limit  *int       `json:"limit" yaml:"limit"`
	Scopes []int      `json:"scopes" yaml:"scopes"`
}

type wireItem struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	URI        string `json:"uri" yaml:"uri"`
	Multiplier *int   `json:"multiplier" yaml:"multiplier"`
	Limit      *int   `json:"limit" yaml:"limit"`
}

type wireEdge struct {
	Target   string `json:"target" yaml:"target"`
	Priority int    `json:"priority" yaml:"priority"`
	Shares   int    `json:"shares" yaml:"shares"`
	Limit    *int   `json:"limit" yaml:"limit"`
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func (w wireTree) toTree() *Playtree {
	t := &Playtree{
		ID:     w.ID,
		Name:   w.Name,
		Nodes:  make(map[string]*Playnode, len(w.Nodes)),
		Scopes: w.Scopes,
		Roots:  w.Roots,
	}
	if t.Roots == nil {
		t.Roots = map[string]Playroot{}
	}
	for key, wn := range w.Nodes {
		n := &Playnode{
			ID:     wn.ID,
			Name:   wn.Name,
			Kind:   wn.Kind,
			Limit:  intOr(wn.Limit, Unlimited),
			Scopes: wn.Scopes,
		}
		if n.ID == "" {
			n.ID = key
		}
		for _, wi := range wn.Items {
			n.Items = append(n.Items, Playitem{
				ID:         wi.ID,
				Name:       wi.Name,
				URI:        wi.URI,
				Multiplier: intOr(wi.Multiplier, 1),
				Limit:      intOr(wi.Limit, Unlimited),
			})
		}
		for _, we := range wn.Next {
			n.Next = append(n.Next, Playedge{
				Target:   we.Target,
				Priority: we.Priority,
				Shares:   we.Shares,
				Limit:    intOr(we.Limit, Unlimited),
			})
		}
		t.Nodes[key] = n
	}
	return t
}

// Decode reads a playtree in the given format. Unknown fields are rejected
// so that typos ("limt:") fail loudly instead of silently meaning Unlimited.
func Decode(r io.Reader, format Format) (*Playtree, error) {
	var w wireTree
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&w); err != nil {
			return nil, fmt.Errorf("failed to parse playtree JSON: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&w); err != nil {
			return nil, fmt.Errorf("failed to parse playtree YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported playtree format %q", format)
	}
	return w.toTree(), nil
}

// LoadFile reads a JSON or YAML playtree from disk.
func LoadFile(path string) (*Playtree, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playtree file: %w", err)
	}
	return Decode(bytes.NewReader(data), format)
}

// Encode writes t in the given format. Every limit is written explicitly,
// so a decode of the output reproduces t exactly.
func Encode(w io.Writer, t *Playtree, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(t)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(t); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported playtree format %q", format)
	}
}
