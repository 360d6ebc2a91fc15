package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/playtree/internal/compiler"
	"github.com/roach88/playtree/internal/engine"
	"github.com/roach88/playtree/internal/playtree"
	"github.com/roach88/playtree/internal/session"
	"github.com/roach88/playtree/internal/store"
	"github.com/roach88/playtree/internal/testutil"
)

// Harness executes one scenario against a fresh engine, journaling every
// successful operation to an in-memory store.
type Harness struct {
	store     *store.Store
	engine    *engine.Engine
	clock     *testutil.DeterministicClock
	sessionID string
	logger    *slog.Logger
	played    []string
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the playtree and create a journal session
// 2. Load the engine and check the load expectation
// 3. Execute steps with expect validation
// 4. Evaluate assertions
// 5. Replay the journal and compare state hashes
func Run(scenario *Scenario) (*Result, error) {
	tree, err := compiler.LoadTree(scenario.Tree)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree: %w", err)
	}
	if issues := playtree.Validate(tree); playtree.HasErrors(issues) {
		return nil, fmt.Errorf("invalid tree: %w", errors.Join(issueErrors(issues)...))
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var engineOpts []engine.EngineOption
	if scenario.MaxTraversalSteps > 0 {
		engineOpts = append(engineOpts, engine.WithMaxTraversalSteps(scenario.MaxTraversalSteps))
	}

	h := &Harness{
		store:     st,
		engine:    engine.New(append(engineOpts, engine.WithLogger(logger))...),
		clock:     testutil.NewDeterministicClock(),
		sessionID: testutil.NewFixedSessionIDs(scenario.Name).Generate(),
		logger:    logger,
	}

	ctx := context.Background()
	if err := h.createSession(ctx, tree); err != nil {
		return nil, err
	}

	result := NewResult()
	if err := h.executeLoad(ctx, tree, scenario.Load, result); err != nil {
		return nil, fmt.Errorf("failed to execute load: %w", err)
	}
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("failed to execute step %d: %w", i, err)
		}
	}

	actx := &AssertionContext{Engine: h.engine, Played: h.played}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	report, err := session.Verify(ctx, st, h.sessionID,
		session.WithLogger(logger), session.WithEngineOptions(engineOpts...))
	if err != nil {
		return nil, fmt.Errorf("failed to verify journal: %w", err)
	}
	if !report.OK() {
		for _, d := range report.Diverged {
			result.AddError(fmt.Sprintf("replay diverged at seq %d (%s)", d.Seq, d.Kind))
		}
		if !report.Stable {
			result.AddError("replay is not stable across runs")
		}
	}
	return result, nil
}

func (h *Harness) createSession(ctx context.Context, tree *playtree.Playtree) error {
	hash, err := playtree.ContentHash(tree)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := playtree.Encode(&buf, tree, playtree.FormatJSON); err != nil {
		return err
	}
	_, err = h.store.CreateSession(ctx, store.Session{
		ID:            h.sessionID,
		TreeHash:      hash,
		TreeJSON:      buf.Bytes(),
		EngineVersion: playtree.EngineVersion,
		FormatVersion: playtree.FormatVersion,
	})
	return err
}

func (h *Harness) executeLoad(ctx context.Context, tree *playtree.Playtree, load LoadStep, result *Result) error {
	r, sel, edge := randoms(load.Draws)
	snap, err := h.engine.Load(tree, r)
	seq := h.clock.Next()
	ev := traceEvent(seq, "load", "", snap.Current, snap, err)
	result.Trace = append(result.Trace, ev)
	if err == nil {
		if err := h.journal(ctx, store.Operation{Seq: seq, Kind: store.OpLoad}, sel, edge); err != nil {
			return err
		}
	}
	if load.Expect != nil {
		h.check(result, "load", ev, load.Expect)
	}
	return nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	actedOn := h.engine.Snapshot().Current
	r, sel, edge := randoms(step.Draws)

	var (
		snap engine.Snapshot
		err  error
		op   = store.Operation{}
	)
	switch step.Op() {
	case "advance":
		op.Kind, op.Event = store.OpAdvance, step.Advance
		snap, err = h.engine.Advance(engine.Event(step.Advance), r)
	case "rewind":
		op.Kind = store.OpRewind
		snap, err = h.engine.Rewind()
	case "switch":
		d, perr := engine.ParseDirection(step.Switch)
		if perr != nil {
			return perr
		}
		op.Kind, op.Direction = store.OpSwitch, int(d)
		snap, err = h.engine.SwitchPlayhead(d)
		actedOn = snap.Current
	}
	if err != nil && !engine.IsContractError(err) {
		return err
	}

	op.Seq = h.clock.Next()
	ev := traceEvent(op.Seq, step.Op(), step.Advance, actedOn, snap, err)
	result.Trace = append(result.Trace, ev)
	if err == nil {
		if op.Kind == store.OpAdvance {
			h.played = append(h.played, ev.Item)
		}
		if err := h.journal(ctx, op, sel, edge); err != nil {
			return err
		}
	}

	where := fmt.Sprintf("steps[%d] %s", index, step.Op())
	switch {
	case step.Expect != nil:
		h.check(result, where, ev, step.Expect)
	case ev.Error != "":
		result.AddError(fmt.Sprintf("%s: unexpected error %s", where, ev.Error))
	}
	return nil
}

// journal appends op with the draws actually consumed and the state hash.
func (h *Harness) journal(ctx context.Context, op store.Operation, sel, edge *recorder) error {
	hash, err := h.engine.StateHash()
	if err != nil {
		return err
	}
	op.SessionID = h.sessionID
	op.SnapshotHash = hash
	op.Draws = store.Draws{Selector: sel.drawn, Edge: edge.drawn}
	return h.store.AppendOperation(ctx, op)
}

// traceEvent builds the trace entry for a step. The node fields describe
// playhead id, which may differ from the current selection after a reset.
func traceEvent(seq int64, op, event, id string, snap engine.Snapshot, err error) TraceEvent {
	ev := TraceEvent{Seq: seq, Op: op, Event: event, Playhead: id, Current: snap.Current}
	if err != nil {
		var rerr *engine.RuntimeError
		if errors.As(err, &rerr) {
			ev.Error = string(rerr.Code)
		} else {
			ev.Error = err.Error()
		}
	}
	v, ok := snap.Playhead(id)
	if !ok {
		return ev
	}
	ev.Node = v.Node
	ev.Item = v.ItemID
	ev.Mult = v.Mult
	ev.Outcome = string(v.Last.Kind)
	ev.Failure = string(v.Last.Failure)
	ev.Stopped = v.Stopped
	ev.History = v.History
	for _, r := range v.Last.Route {
		ev.Route = append(ev.Route, r.String())
	}
	return ev
}

func issueErrors(issues []playtree.Issue) []error {
	var errs []error
	for _, issue := range issues {
		if issue.Severity == playtree.SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}
