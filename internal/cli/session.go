package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/playtree/internal/engine"
	"github.com/roach88/playtree/internal/session"
	"github.com/roach88/playtree/internal/store"
)

// SessionOptions holds flags shared by the session subcommands.
type SessionOptions struct {
	*RootOptions
	Database string
	Session  string // session id; latest session when empty
	Seed     int64  // new only

	// IDs overrides the session id generator (for testing).
	IDs session.IDGenerator
}

// SessionView is the JSON payload of the session subcommands.
type SessionView struct {
	Session  string          `json:"session"`
	Seed     int64           `json:"seed"`
	Snapshot engine.Snapshot `json:"snapshot"`
}

// NewSessionCommand creates the session command and its subcommands.
func NewSessionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Create and drive journaled playback sessions",
		Long: `Create and drive journaled playback sessions.

A session binds one playtree to a seeded random generator and records
every operation, with the random values it consumed and the resulting
state hash, in a SQLite database. Each command reopens the session by
replaying its journal, applies one operation, and records it.

Without --session the most recently created session is used.

Examples:
  playtree session new morning.yaml --db ./playtree.db
  playtree session advance
  playtree session advance --event skip_forward
  playtree session rewind
  playtree session switch next
  playtree session show --format json
  playtree session log
  playtree session list --tree morning.yaml
  playtree session delete 0190...`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default session.db from config)")
	cmd.PersistentFlags().StringVar(&opts.Session, "session", "", "session id (default: latest)")

	cmd.AddCommand(newSessionNewCommand(opts))
	cmd.AddCommand(newSessionAdvanceCommand(opts))
	cmd.AddCommand(newSessionOpCommand(opts, "rewind", "Undo the current playhead's last advance", cobra.NoArgs,
		func(ctx context.Context, s *session.Session, _ []string) (engine.Snapshot, error) {
			return s.Rewind(ctx)
		}))
	cmd.AddCommand(newSessionOpCommand(opts, "switch <next|prev>", "Move the current playhead selection", cobra.ExactArgs(1),
		func(ctx context.Context, s *session.Session, args []string) (engine.Snapshot, error) {
			d, err := engine.ParseDirection(args[0])
			if err != nil {
				return s.Snapshot(), err
			}
			return s.Switch(ctx, d)
		}))
	cmd.AddCommand(newSessionShowCommand(opts))
	cmd.AddCommand(newSessionListCommand(opts))
	cmd.AddCommand(newSessionDeleteCommand(opts))
	cmd.AddCommand(NewSessionLogCommand(opts))

	return cmd
}

func newSessionNewCommand(opts *SessionOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "new <playtree>",
		Short:         "Start a session on a playtree",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionNew(opts, args[0], cmd)
		},
	}
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 uses session.seed from config, then a fresh seed)")
	return cmd
}

func runSessionNew(opts *SessionOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	res, err := loadValidTree(f, path)
	if err != nil {
		return err
	}
	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	defer st.Close()

	seed := opts.Seed
	if seed == 0 {
		seed = opts.config().Session.Seed
	}
	sopts := append(opts.sessionOptions(), session.WithSeed(seed))
	if opts.IDs != nil {
		sopts = append(sopts, session.WithIDGenerator(opts.IDs))
	}

	s, snap, err := session.New(cmdContext(cmd), st, res.Tree, sopts...)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to create session", err)
	}
	return outputSession(f, s, snap, "created")
}

func newSessionAdvanceCommand(opts *SessionOptions) *cobra.Command {
	var event string
	cmd := newSessionOpCommand(opts, "advance", "Advance the current playhead", cobra.NoArgs,
		func(ctx context.Context, s *session.Session, _ []string) (engine.Snapshot, error) {
			ev, err := engine.ParseEvent(event)
			if err != nil {
				return s.Snapshot(), err
			}
			return s.Advance(ctx, ev)
		})
	cmd.Flags().StringVar(&event, "event", string(engine.SongEnded), "advance event (song_ended|skip_forward)")
	return cmd
}

// sessionOp applies one operation to an open session.
type sessionOp func(ctx context.Context, s *session.Session, args []string) (engine.Snapshot, error)

func newSessionOpCommand(opts *SessionOptions, use, short string, args cobra.PositionalArgs, op sessionOp) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionOp(opts, cmd, args, op)
		},
	}
}

func runSessionOp(opts *SessionOptions, cmd *cobra.Command, args []string, op sessionOp) error {
	f := opts.formatter(cmd)
	ctx := cmdContext(cmd)

	st, err := opts.openStore(f)
	if err != nil {
		return err
	}
	defer st.Close()

	s, err := opts.openSession(ctx, f, st)
	if err != nil {
		return err
	}

	snap, err := op(ctx, s, args)
	if err != nil {
		if engine.IsContractError(err) {
			code := ErrCodeContract
			if engine.HasCode(err, engine.ErrCodeUnknownEvent) || engine.HasCode(err, engine.ErrCodeBadDirection) {
				code = ErrCodeBadArgument
			}
			return f.fail(ExitCommandError, code, "operation refused", err)
		}
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "operation failed", err)
	}
	return outputSession(f, s, snap, cmd.Name())
}

func newSessionShowCommand(opts *SessionOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show every playhead of a session",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			st, err := opts.openStore(f)
			if err != nil {
				return err
			}
			defer st.Close()

			s, err := opts.openSession(cmdContext(cmd), f, st)
			if err != nil {
				return err
			}
			snap := s.Snapshot()
			if f.JSON() {
				return f.Success(SessionView{Session: s.ID(), Seed: s.Seed(), Snapshot: snap})
			}
			f.Printf("Session %s (seed %d)\n\n", s.ID(), s.Seed())
			for _, v := range snap.Playheads {
				marker := " "
				if v.ID == snap.Current {
					marker = "*"
				}
				f.Printf("%s %s: %s\n", marker, v.ID, position(v))
				f.Printf("    node %d/%s  item %d/%s  history %d\n",
					v.NodeCount, limitText(v.NodeLimit), v.ItemCount, limitText(v.ItemLimit), v.History)
				if opts.Verbose {
					for _, m := range v.Log {
						f.Printf("    [%d] %s %s\n", m.Seq, m.Level, m.Text)
					}
				}
			}
			return nil
		},
	}
}

// SessionSummary is one row of session list.
type SessionSummary struct {
	ID         string `json:"id"`
	TreeHash   string `json:"tree_hash"`
	Seed       int64  `json:"seed"`
	CreatedSeq int64  `json:"created_seq"`
}

func newSessionListCommand(opts *SessionOptions) *cobra.Command {
	var tree string
	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List sessions in the database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			ctx := cmdContext(cmd)

			var hash string
			if tree != "" {
				res, err := LoadPlaytree(tree)
				if err != nil {
					return f.fail(ExitCommandError, loadCode(err), "failed to load playtree", err)
				}
				hash = res.Hash
			}

			st, err := opts.openStore(f)
			if err != nil {
				return err
			}
			defer st.Close()

			var sessions []store.Session
			if hash != "" {
				sessions, err = st.FindSessionsByTree(ctx, hash)
			} else {
				sessions, err = st.ListSessions(ctx)
			}
			if err != nil {
				return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to list sessions", err)
			}
			out := make([]SessionSummary, 0, len(sessions))
			for _, s := range sessions {
				out = append(out, SessionSummary{ID: s.ID, TreeHash: s.TreeHash, Seed: s.Seed, CreatedSeq: s.CreatedSeq})
			}
			if f.JSON() {
				return f.Success(out)
			}
			if len(out) == 0 {
				f.Printf("No sessions found in database.\n")
				return nil
			}
			for _, s := range out {
				f.Printf("%4d  %s  tree %s  seed %d\n", s.CreatedSeq, s.ID, shortHash(s.TreeHash), s.Seed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tree, "tree", "", "only sessions that loaded this playtree")
	return cmd
}

func newSessionDeleteCommand(opts *SessionOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <session-id>",
		Short:         "Delete a session and its journal",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)
			st, err := opts.openStore(f)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteSession(cmdContext(cmd), args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return f.fail(ExitCommandError, ErrCodeSessionNotFound, fmt.Sprintf("session %s not found", args[0]), err)
				}
				return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to delete session", err)
			}
			opts.logger().Info("session deleted", "session", args[0])
			if f.JSON() {
				return f.Success(map[string]string{"deleted": args[0]})
			}
			f.Printf("Deleted session %s\n", args[0])
			return nil
		},
	}
}

func (o *SessionOptions) openStore(f *OutputFormatter) (*store.Store, error) {
	path := o.dbPath(o.Database)
	st, err := store.Open(path)
	if err != nil {
		return nil, f.fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("failed to open database %s", path), err)
	}
	return st, nil
}

// resolveID returns --session, or the latest session when it is empty.
func (o *SessionOptions) resolveID(ctx context.Context, f *OutputFormatter, st *store.Store) (string, error) {
	if o.Session != "" {
		return o.Session, nil
	}
	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return "", f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to list sessions", err)
	}
	if len(sessions) == 0 {
		return "", f.fail(ExitCommandError, ErrCodeSessionNotFound, "no sessions in database (run session new)", nil)
	}
	return sessions[len(sessions)-1].ID, nil
}

// openSession reopens the selected session by replaying its journal.
func (o *SessionOptions) openSession(ctx context.Context, f *OutputFormatter, st *store.Store) (*session.Session, error) {
	id, err := o.resolveID(ctx, f, st)
	if err != nil {
		return nil, err
	}

	s, _, err := session.Open(ctx, st, id, o.sessionOptions()...)
	if err != nil {
		var div *session.DivergenceError
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, f.fail(ExitCommandError, ErrCodeSessionNotFound, fmt.Sprintf("session %s not found", id), err)
		case errors.As(err, &div):
			return nil, f.fail(ExitFailure, ErrCodeDiverged, "journal does not replay", err)
		}
		return nil, f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to open session", err)
	}
	return s, nil
}

// outputSession prints the state after an operation.
func outputSession(f *OutputFormatter, s *session.Session, snap engine.Snapshot, verb string) error {
	if f.JSON() {
		return f.Success(SessionView{Session: s.ID(), Seed: s.Seed(), Snapshot: snap})
	}
	v, ok := snap.CurrentView()
	if !ok {
		f.Printf("%s %s: no playheads\n", verb, s.ID())
		return nil
	}
	f.Printf("%s %s\n", verb, s.ID())
	f.Printf("  %s: %s\n", v.ID, position(v))
	if n := len(v.Log); n > 0 {
		f.Printf("  %s\n", v.Log[n-1].Text)
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func limitText(limit int) string {
	if limit < 0 {
		return "∞"
	}
	return fmt.Sprint(limit)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
