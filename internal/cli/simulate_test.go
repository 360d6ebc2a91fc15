package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateLinear(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "linear.yaml", linearTree)

	out, _, err := execute(NewSimulateCommand(&RootOptions{Format: "json"}), path, "--steps", "3", "--seed", "7")
	require.NoError(t, err)

	var result SimulateResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(7), result.Seed)
	assert.Equal(t, "song_ended", result.Event)
	assert.Equal(t, 1, result.Resets)

	want := []SimulateStep{
		{Step: 1, Playhead: "n", Node: "n", Item: "a", Mult: 1, Outcome: "intra"},
		{Step: 2, Playhead: "n", Node: "n", Item: "b", Mult: 0, Outcome: "intra"},
		{Step: 3, Playhead: "n", Node: "n", Item: "a", Mult: 0, Outcome: "reset", Failure: "NO_ELIGIBLE_EDGE", Stopped: true},
	}
	assert.Equal(t, want, result.Steps)
}

func TestSimulateSameSeedSameWalk(t *testing.T) {
	isolate(t)
	path := filepath.Join("..", "harness", "testdata", "trees", "selector.yaml")

	walk := func() []SimulateStep {
		out, _, err := execute(NewSimulateCommand(&RootOptions{Format: "json"}), path, "--steps", "6", "--seed", "42")
		require.NoError(t, err)
		var result SimulateResult
		decodeResponse(t, out, &result)
		return result.Steps
	}
	first := walk()
	require.Len(t, first, 6)
	assert.Equal(t, first, walk())
}

func TestSimulateText(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "linear.yaml", linearTree)

	out, _, err := execute(NewSimulateCommand(&RootOptions{Format: "text"}), path, "-n", "3", "--seed", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "start    n: n/a")
	assert.Contains(t, out, "1 intra     n: n/a x2")
	assert.Contains(t, out, "reset     n: n/a [stopped] (NO_ELIGIBLE_EDGE)")
}

func TestSimulateSave(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "linear.yaml", linearTree)
	dbPath := filepath.Join(dir, "saved.db")

	out, _, err := execute(NewSimulateCommand(&RootOptions{Format: "text"}), path, "--steps", "2", "--seed", "3", "--save", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved session")

	// The saved walk continues where the simulation stopped.
	view, _, err := (&sessionEnv{t: t, db: dbPath}).run("show")
	require.NoError(t, err)
	v, ok := view.Snapshot.CurrentView()
	require.True(t, ok)
	assert.Equal(t, "b", v.ItemID)
	assert.Equal(t, 2, v.History)
}

func TestSimulateBadArguments(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "linear.yaml", linearTree)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown event", []string{path, "--event", "pause"}},
		{"negative steps", []string{path, "--steps", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(NewSimulateCommand(&RootOptions{Format: "text"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), ErrCodeBadArgument)
		})
	}
}

func TestSimulateNoPlayheads(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "rootless.yaml", "id: rootless\nnodes:\n  n:\n    kind: sequencer\n    items: [{id: a}]\n")

	_, _, err := execute(NewSimulateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "no playheads")
}
