package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/playtree/internal/session"
	"github.com/roach88/playtree/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// DivergedOp is one journaled operation whose replayed hash disagreed.
type DivergedOp struct {
	Seq  int64  `json:"seq"`
	Kind string `json:"kind"`
	Want string `json:"want"`
	Got  string `json:"got"`
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session    string       `json:"session"`
	Operations int          `json:"operations"`
	Diverged   []DivergedOp `json:"diverged"`
	Stable     bool         `json:"stable"`
	OK         bool         `json:"ok"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions      []ReplaySessionResult `json:"sessions"`
	TotalSessions int                   `json:"total_sessions"`
	AllOK         bool                  `json:"all_ok"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay session journals and verify determinism",
		Long: `Replay every journaled operation of a session through a fresh engine,
twice, feeding it the recorded random values.

Each replayed state hash must equal the hash recorded when the operation
first ran, and the two replays must agree with each other.

Exit codes:
  0 - All sessions replay to their recorded states
  1 - A session diverged
  2 - Command error (database not found, etc.)

Examples:
  playtree replay --db ./playtree.db
  playtree replay --db ./playtree.db --session 0190...
  playtree replay --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default session.db from config)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmdContext(cmd)

	path := opts.dbPath(opts.Database)
	st, err := store.Open(path)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("failed to open database %s", path), err)
	}
	defer st.Close()

	var ids []string
	if opts.Session != "" {
		ids = []string{opts.Session}
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to list sessions", err)
		}
		for _, s := range sessions {
			ids = append(ids, s.ID)
		}
	}

	result := ReplayResult{
		Sessions:      make([]ReplaySessionResult, 0, len(ids)),
		TotalSessions: len(ids),
		AllOK:         true,
	}

	sopts := opts.sessionOptions()
	for _, id := range ids {
		report, err := session.Verify(ctx, st, id, sopts...)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("failed to replay session %s", id), err)
		}
		r := ReplaySessionResult{
			Session:    report.SessionID,
			Operations: report.Operations,
			Diverged:   []DivergedOp{},
			Stable:     report.Stable,
			OK:         report.OK(),
		}
		for _, d := range report.Diverged {
			r.Diverged = append(r.Diverged, DivergedOp{Seq: d.Seq, Kind: string(d.Kind), Want: d.Want, Got: d.Got})
		}
		if !r.OK {
			result.AllOK = false
		}
		result.Sessions = append(result.Sessions, r)
	}

	if f.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.AllOK {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeDiverged, Message: "replay diverged from the journal"}
		}
		if err := f.Encode(resp); err != nil {
			return err
		}
	} else {
		outputReplayText(f, result)
	}

	if !result.AllOK {
		return NewExitError(ExitFailure, "replay diverged from the journal")
	}
	return nil
}

func outputReplayText(f *OutputFormatter, result ReplayResult) {
	if result.TotalSessions == 0 {
		f.Printf("No sessions found in database.\n")
		return
	}

	f.Printf("Replaying %d session(s)...\n\n", result.TotalSessions)
	for _, s := range result.Sessions {
		mark := "✓"
		if !s.OK {
			mark = "✗"
		}
		f.Printf("%s %s  %d operation(s)\n", mark, s.Session, s.Operations)
		if !s.Stable {
			f.Printf("    replays disagree with each other\n")
		}
		for _, d := range s.Diverged {
			f.Printf("    [%d] %s: want %s, got %s\n", d.Seq, d.Kind, shortHash(d.Want), shortHash(d.Got))
		}
	}

	if result.AllOK {
		f.Printf("\n✓ All sessions replay deterministically\n")
	} else {
		f.Printf("\n✗ Replay diverged\n")
	}
}
