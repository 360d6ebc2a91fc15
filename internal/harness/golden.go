package harness

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/playtree/internal/playtree"
)

// canonicalMap converts a trace event to a map[string]any for canonical
// JSON serialization. Optional fields are left out when empty.
func (ev TraceEvent) canonicalMap() map[string]any {
	m := map[string]any{
		"seq":      ev.Seq,
		"op":       ev.Op,
		"playhead": ev.Playhead,
		"current":  ev.Current,
		"node":     ev.Node,
		"mult":     ev.Mult,
		"outcome":  ev.Outcome,
		"stopped":  ev.Stopped,
		"history":  ev.History,
	}
	if ev.Event != "" {
		m["event"] = ev.Event
	}
	if ev.Item != "" {
		m["item"] = ev.Item
	}
	if len(ev.Route) > 0 {
		route := make([]any, len(ev.Route))
		for i, r := range ev.Route {
			route[i] = r
		}
		m["route"] = route
	}
	if ev.Failure != "" {
		m["failure"] = ev.Failure
	}
	if ev.Error != "" {
		m["error"] = ev.Error
	}
	return m
}

// MarshalTrace renders a trace as canonical JSON, one event per line.
func MarshalTrace(trace []TraceEvent) ([]byte, error) {
	var buf bytes.Buffer
	for _, ev := range trace {
		line, err := playtree.MarshalCanonical(ev.canonicalMap())
		if err != nil {
			return nil, err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalTrace(result.Trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
