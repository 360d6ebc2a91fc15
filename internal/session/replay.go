package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/playtree/internal/engine"
	"github.com/roach88/playtree/internal/playtree"
	"github.com/roach88/playtree/internal/store"
)

// DivergenceError reports a replayed operation whose state hash differs
// from the one recorded.
type DivergenceError struct {
	SessionID string
	Seq       int64
	Want      string
	Got       string
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("session %s diverged at seq %d: recorded %s, replayed %s",
		e.SessionID, e.Seq, short(e.Want), short(e.Got))
}

func short(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// OpResult is the outcome of replaying one journaled operation.
type OpResult struct {
	Seq  int64
	Kind store.OpKind
	Want string // recorded hash
	Got  string // replayed hash
}

// replay applies ops to eng in order. Contract errors that the original
// run returned are never journaled, so any error here means a corrupt
// journal.
func replay(eng *engine.Engine, t *playtree.Playtree, ops []store.Operation) ([]OpResult, error) {
	results := make([]OpResult, 0, len(ops))
	for i, op := range ops {
		if (i == 0) != (op.Kind == store.OpLoad) {
			return nil, fmt.Errorf("seq %d: %s operation out of place", op.Seq, op.Kind)
		}
		r := engine.Randoms{
			Selector: engine.Draws(op.Draws.Selector...),
			Edge:     engine.Draws(op.Draws.Edge...),
		}

		var err error
		switch op.Kind {
		case store.OpLoad:
			_, err = eng.Load(t, r)
		case store.OpAdvance:
			var ev engine.Event
			if ev, err = engine.ParseEvent(op.Event); err == nil {
				_, err = eng.Advance(ev, r)
			}
		case store.OpRewind:
			_, err = eng.Rewind()
		case store.OpSwitch:
			_, err = eng.SwitchPlayhead(engine.Direction(op.Direction))
		default:
			err = fmt.Errorf("unknown operation kind %q", op.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("seq %d: replay %s: %w", op.Seq, op.Kind, err)
		}

		hash, err := eng.StateHash()
		if err != nil {
			return nil, fmt.Errorf("seq %d: %w", op.Seq, err)
		}
		results = append(results, OpResult{Seq: op.Seq, Kind: op.Kind, Want: op.SnapshotHash, Got: hash})
	}
	return results, nil
}

// Report is the result of verifying one session.
type Report struct {
	SessionID  string
	Operations int
	Diverged   []OpResult // operations whose hash disagreed
	Stable     bool       // both replays produced identical hashes
}

// OK reports whether the journal replayed cleanly.
func (r Report) OK() bool {
	return r.Stable && len(r.Diverged) == 0
}

// Verify replays a session's journal twice through fresh engines. Every
// replayed hash is compared with the recording, and the two runs are
// compared with each other.
func Verify(ctx context.Context, st *store.Store, id string, opts ...Option) (Report, error) {
	o := buildOptions(opts)
	logger := o.logger
	state, err := st.GetSessionState(ctx, id)
	if err != nil {
		return Report{}, fmt.Errorf("verify: %w", err)
	}
	t, err := decodeTree(state.Session)
	if err != nil {
		return Report{}, fmt.Errorf("verify: %w", err)
	}

	o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	first, err := replay(o.newEngine(), t, state.Operations)
	if err != nil {
		return Report{}, fmt.Errorf("verify %s: %w", id, err)
	}
	second, err := replay(o.newEngine(), t, state.Operations)
	if err != nil {
		return Report{}, fmt.Errorf("verify %s: %w", id, err)
	}

	report := Report{SessionID: id, Operations: len(first), Stable: len(first) == len(second)}
	for i, res := range first {
		if res.Got != res.Want {
			report.Diverged = append(report.Diverged, res)
		}
		if i < len(second) && second[i].Got != res.Got {
			report.Stable = false
		}
	}
	logger.Debug("session verified", "session", id, "operations", report.Operations, "diverged", len(report.Diverged))
	return report, nil
}
