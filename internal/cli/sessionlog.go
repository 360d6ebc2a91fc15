package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/playtree/internal/store"
)

// LogEntry is one journaled operation in the timeline.
type LogEntry struct {
	Seq       int64       `json:"seq"`
	Kind      string      `json:"kind"`
	Event     string      `json:"event,omitempty"`
	Direction int         `json:"direction,omitempty"`
	Draws     store.Draws `json:"draws"`
	Hash      string      `json:"hash"`
}

// LogStats holds summary statistics for a session journal.
type LogStats struct {
	Operations int            `json:"operations"`
	ByKind     map[string]int `json:"by_kind"`
	Draws      int            `json:"draws"`
	LastSeq    int64          `json:"last_seq"`
}

// LogResult holds the complete log output.
type LogResult struct {
	Session  string     `json:"session"`
	TreeHash string     `json:"tree_hash"`
	Seed     int64      `json:"seed"`
	Timeline []LogEntry `json:"timeline"`
	Stats    LogStats   `json:"stats"`
}

// NewSessionLogCommand creates the session log command.
func NewSessionLogCommand(opts *SessionOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show a session's operation journal",
		Long: `Show the journal of a session: every operation in order with the
random values it consumed and the state hash recorded after it.

Examples:
  playtree session log --session 0190...
  playtree session log --kind advance
  playtree session log --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionLog(opts, kind, cmd)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "filter to one operation kind (load|advance|rewind|switch)")

	return cmd
}

func runSessionLog(opts *SessionOptions, kind string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmdContext(cmd)

	switch store.OpKind(kind) {
	case "", store.OpLoad, store.OpAdvance, store.OpRewind, store.OpSwitch:
	default:
		return f.fail(ExitCommandError, ErrCodeBadArgument, fmt.Sprintf("unknown operation kind %q", kind), nil)
	}

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := opts.resolveID(ctx, f, st)
	if err != nil {
		return err
	}

	state, err := st.GetSessionState(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return f.fail(ExitCommandError, ErrCodeSessionNotFound, fmt.Sprintf("session %s not found", id), err)
		}
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to read session", err)
	}

	result := LogResult{
		Session:  state.Session.ID,
		TreeHash: state.Session.TreeHash,
		Seed:     state.Session.Seed,
		Timeline: buildTimeline(state.Operations, store.OpKind(kind)),
		Stats: LogStats{
			Operations: len(state.Operations),
			ByKind:     make(map[string]int, len(state.Counts)),
			Draws:      state.Draws,
			LastSeq:    state.LastSeq,
		},
	}
	for k, n := range state.Counts {
		result.Stats.ByKind[string(k)] = n
	}

	if f.JSON() {
		return f.Success(result)
	}
	outputLogText(f, result)
	return nil
}

// buildTimeline converts journaled operations, keeping only kind when set.
func buildTimeline(ops []store.Operation, kind store.OpKind) []LogEntry {
	timeline := []LogEntry{}
	for _, op := range ops {
		if kind != "" && op.Kind != kind {
			continue
		}
		timeline = append(timeline, LogEntry{
			Seq:       op.Seq,
			Kind:      string(op.Kind),
			Event:     op.Event,
			Direction: op.Direction,
			Draws:     op.Draws,
			Hash:      op.SnapshotHash,
		})
	}
	return timeline
}

func outputLogText(f *OutputFormatter, result LogResult) {
	f.Printf("Session %s (tree %s, seed %d)\n\n", result.Session, shortHash(result.TreeHash), result.Seed)

	for _, e := range result.Timeline {
		detail := e.Event
		if e.Kind == string(store.OpSwitch) {
			detail = "next"
			if e.Direction < 0 {
				detail = "prev"
			}
		}
		f.Printf("[%3d] %-8s %-13s %s%s\n", e.Seq, e.Kind, detail, shortHash(e.Hash), drawsText(e.Draws))
	}

	f.Printf("\n%d operation(s), %d draw(s)\n", result.Stats.Operations, result.Stats.Draws)
}

func drawsText(d store.Draws) string {
	if d.Empty() {
		return ""
	}
	var parts []string
	if len(d.Selector) > 0 {
		parts = append(parts, fmt.Sprintf("selector=%v", d.Selector))
	}
	if len(d.Edge) > 0 {
		parts = append(parts, fmt.Sprintf("edge=%v", d.Edge))
	}
	return "  " + strings.Join(parts, " ")
}
