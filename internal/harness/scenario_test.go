package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	tree := "nodes:\n  n:\n    kind: sequencer\n    items:\n      - {id: a}\nroots:\n  n: {index: 0}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tree.yaml"), []byte(tree), 0o644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestLoadScenario_Valid tests parsing and tree path resolution.
func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: valid
description: one of each step
tree: tree.yaml
max_traversal_steps: 8
load:
  draws:
    selector: [0.25]
steps:
  - advance: song_ended
    draws:
      edge: [0.5, 0.75]
    expect:
      item: a
      mult: 0
      counters:
        "node[-1] n": 1
  - rewind: true
  - switch: prev
assertions:
  - type: counter
    playhead: n
    key: "node[-1] n"
    count: 0
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "valid", s.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "tree.yaml"), s.Tree)
	assert.Equal(t, 8, s.MaxTraversalSteps)
	assert.Equal(t, []float64{0.25}, s.Load.Draws.Selector)

	require.Len(t, s.Steps, 3)
	assert.Equal(t, "advance", s.Steps[0].Op())
	assert.Equal(t, []float64{0.5, 0.75}, s.Steps[0].Draws.Edge)
	require.NotNil(t, s.Steps[0].Expect.Mult)
	assert.Equal(t, 0, *s.Steps[0].Expect.Mult)
	assert.Nil(t, s.Steps[0].Expect.Stopped)
	assert.Equal(t, 1, s.Steps[0].Expect.Counters["node[-1] n"])
	assert.Equal(t, "rewind", s.Steps[1].Op())
	assert.Equal(t, "switch", s.Steps[2].Op())
	require.Len(t, s.Assertions, 1)
}

// TestLoadScenario_Invalid tests the validation errors.
func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "unknown field",
			body: "name: x\ndescription: d\ntree: tree.yaml\nstep: []\n",
			want: "failed to parse YAML",
		},
		{
			name: "missing name",
			body: "description: d\ntree: tree.yaml\n",
			want: "name is required",
		},
		{
			name: "missing description",
			body: "name: x\ntree: tree.yaml\n",
			want: "description is required",
		},
		{
			name: "missing tree file",
			body: "name: x\ndescription: d\ntree: other.yaml\n",
			want: "tree not found",
		},
		{
			name: "negative steps",
			body: "name: x\ndescription: d\ntree: tree.yaml\nmax_traversal_steps: -1\n",
			want: "max_traversal_steps",
		},
		{
			name: "two ops in one step",
			body: "name: x\ndescription: d\ntree: tree.yaml\nsteps:\n  - advance: song_ended\n    rewind: true\n",
			want: "steps[0]: exactly one of",
		},
		{
			name: "empty step",
			body: "name: x\ndescription: d\ntree: tree.yaml\nsteps:\n  - draws: {edge: [0.1]}\n",
			want: "steps[0]: exactly one of",
		},
		{
			name: "bad direction",
			body: "name: x\ndescription: d\ntree: tree.yaml\nsteps:\n  - switch: sideways\n",
			want: "unknown direction",
		},
		{
			name: "unknown assertion",
			body: "name: x\ndescription: d\ntree: tree.yaml\nassertions:\n  - type: vibes\n",
			want: `unknown assertion type "vibes"`,
		},
		{
			name: "counter without key",
			body: "name: x\ndescription: d\ntree: tree.yaml\nassertions:\n  - type: counter\n    playhead: n\n",
			want: "playhead and key are required",
		},
		{
			name: "items_played without items",
			body: "name: x\ndescription: d\ntree: tree.yaml\nassertions:\n  - type: items_played\n",
			want: "items list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// TestLoadScenario_MissingFile tests the read error.
func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}
