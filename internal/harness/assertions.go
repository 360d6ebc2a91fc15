package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/playtree/internal/engine"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s@%s item=%s x%d %s\n",
				ev.Seq, ev.Op, ev.Playhead, ev.Node, ev.Item, ev.Mult, ev.Outcome)
		}
	}
	return buf.String()
}

// AssertionContext provides the final engine state for assertions.
type AssertionContext struct {
	Engine *engine.Engine
	Played []string // item id current after each successful advance
}

// assertFinalState checks a playhead's position and stopped flag.
func assertFinalState(snap engine.Snapshot, a Assertion, trace []TraceEvent) error {
	v, ok := snap.Playhead(a.Playhead)
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("playhead %s", a.Playhead),
			Actual:   "no such playhead",
			Trace:    trace,
		}
	}

	var diffs []string
	if a.Node != "" && v.Node != a.Node {
		diffs = append(diffs, fmt.Sprintf("node %s, want %s", v.Node, a.Node))
	}
	if a.Item != "" && v.ItemID != a.Item {
		diffs = append(diffs, fmt.Sprintf("item %s, want %s", v.ItemID, a.Item))
	}
	if a.Stopped != nil && v.Stopped != *a.Stopped {
		diffs = append(diffs, fmt.Sprintf("stopped %t, want %t", v.Stopped, *a.Stopped))
	}
	if len(diffs) > 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("playhead %s at node=%q item=%q", a.Playhead, a.Node, a.Item),
			Actual:   strings.Join(diffs, "; "),
			Trace:    trace,
		}
	}
	return nil
}

// assertCounter checks one counter of a playhead.
func assertCounter(e *engine.Engine, a Assertion) error {
	got, err := readCounter(e, a.Playhead, a.Key)
	if err != nil {
		return &AssertionError{Type: AssertCounter, Expected: a.Key, Actual: err.Error()}
	}
	if got != a.Count {
		return &AssertionError{
			Type:     AssertCounter,
			Expected: fmt.Sprintf("%s = %d on %s", a.Key, a.Count, a.Playhead),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

// assertMessageContains checks a playhead's message log for text.
func assertMessageContains(snap engine.Snapshot, a Assertion) error {
	v, ok := snap.Playhead(a.Playhead)
	if ok {
		for _, m := range v.Log {
			if strings.Contains(m.Text, a.Text) {
				return nil
			}
		}
	}
	return &AssertionError{
		Type:     AssertMessageContains,
		Expected: fmt.Sprintf("message on %s containing %q", a.Playhead, a.Text),
		Actual:   "not found in log",
	}
}

// assertItemsPlayed checks the exact sequence of items reached by advances.
func assertItemsPlayed(played []string, a Assertion, trace []TraceEvent) error {
	if slices.Equal(played, a.Items) {
		return nil
	}
	return &AssertionError{
		Type:     AssertItemsPlayed,
		Expected: fmt.Sprintf("%v", a.Items),
		Actual:   fmt.Sprintf("%v", played),
		Trace:    trace,
	}
}

// readCounter finds a counter by its key string.
func readCounter(e *engine.Engine, playhead, key string) (int, error) {
	entries, ok := e.Counters(playhead)
	if !ok {
		return 0, fmt.Errorf("no playhead %s", playhead)
	}
	for _, en := range entries {
		if en.Key.String() == key {
			return en.Count, nil
		}
	}
	return 0, fmt.Errorf("counter %s is not tracked", key)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	if len(assertions) == 0 {
		return errs
	}
	if actx == nil || actx.Engine == nil {
		return []string{"assertions require an engine context"}
	}
	snap := actx.Engine.Snapshot()

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertFinalState:
			err = assertFinalState(snap, assertion, result.Trace)
		case AssertCounter:
			err = assertCounter(actx.Engine, assertion)
		case AssertMessageContains:
			err = assertMessageContains(snap, assertion)
		case AssertItemsPlayed:
			err = assertItemsPlayed(actx.Played, assertion, result.Trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// check compares one trace event with a step's expectation and records a
// failure per mismatching field.
func (h *Harness) check(result *Result, where string, ev TraceEvent, x *Expect) {
	fail := func(field string, got, want any) {
		result.AddError(fmt.Sprintf("%s: %s = %v, want %v", where, field, got, want))
	}

	if x.Playhead != "" && ev.Playhead != x.Playhead {
		fail("playhead", ev.Playhead, x.Playhead)
	}
	if x.Current != "" && ev.Current != x.Current {
		fail("current", ev.Current, x.Current)
	}
	if x.Node != "" && ev.Node != x.Node {
		fail("node", ev.Node, x.Node)
	}
	if x.Item != "" && ev.Item != x.Item {
		fail("item", ev.Item, x.Item)
	}
	if x.Mult != nil && ev.Mult != *x.Mult {
		fail("mult", ev.Mult, *x.Mult)
	}
	if x.Outcome != "" && ev.Outcome != x.Outcome {
		fail("outcome", ev.Outcome, x.Outcome)
	}
	if x.Route != nil && !slices.Equal(ev.Route, x.Route) {
		fail("route", ev.Route, x.Route)
	}
	if x.Failure != "" && ev.Failure != x.Failure {
		fail("failure", ev.Failure, x.Failure)
	}
	if x.Stopped != nil && ev.Stopped != *x.Stopped {
		fail("stopped", ev.Stopped, *x.Stopped)
	}
	if x.History != nil && ev.History != *x.History {
		fail("history", ev.History, *x.History)
	}
	if ev.Error != x.Error {
		fail("error", ev.Error, x.Error)
	}

	keys := make([]string, 0, len(x.Counters))
	for k := range x.Counters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		got, err := readCounter(h.engine, ev.Playhead, k)
		if err != nil {
			result.AddError(fmt.Sprintf("%s: %v", where, err))
			continue
		}
		if got != x.Counters[k] {
			fail(k, got, x.Counters[k])
		}
	}
}
