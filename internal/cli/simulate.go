package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/playtree/internal/engine"
	"github.com/roach88/playtree/internal/session"
	"github.com/roach88/playtree/internal/store"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Steps int
	Seed  int64
	Event string
	Save  string // database to keep the session in; in-memory when empty

	// IDs overrides the session id generator (for testing).
	IDs session.IDGenerator
}

// SimulateStep is one decision made during a simulation.
type SimulateStep struct {
	Step     int      `json:"step"`
	Playhead string   `json:"playhead"`
	Node     string   `json:"node"`
	Item     string   `json:"item,omitempty"`
	Mult     int      `json:"mult"`
	Outcome  string   `json:"outcome"`
	Route    []string `json:"route,omitempty"`
	Failure  string   `json:"failure,omitempty"`
	Stopped  bool     `json:"stopped"`
}

// SimulateResult holds a whole simulation.
type SimulateResult struct {
	Session string         `json:"session"`
	Seed    int64          `json:"seed"`
	Event   string         `json:"event"`
	Steps   []SimulateStep `json:"steps"`
	Resets  int            `json:"resets"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <playtree>",
		Short: "Walk a playtree with seeded random draws",
		Long: `Load a playtree and advance the current playhead repeatedly, printing
every decision. Draws come from a generator seeded with --seed, so a
given seed always produces the same walk.

The walk runs as a journaled session, in memory by default. With --save
the session is written to a database and can be continued with the
session commands.

Examples:
  playtree simulate morning.yaml --steps 20 --seed 7
  playtree simulate morning.cue --event skip_forward --format json
  playtree simulate morning.yaml --save ./playtree.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Steps, "steps", "n", 10, "number of advances")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 uses session.seed from config, then a fresh seed)")
	cmd.Flags().StringVar(&opts.Event, "event", string(engine.SongEnded), "advance event (song_ended|skip_forward)")
	cmd.Flags().StringVar(&opts.Save, "save", "", "keep the session in this SQLite database")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	ev, err := engine.ParseEvent(opts.Event)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeBadArgument, err.Error(), err)
	}
	if opts.Steps < 0 {
		return f.fail(ExitCommandError, ErrCodeBadArgument, "--steps must be non-negative", nil)
	}

	res, err := loadValidTree(f, path)
	if err != nil {
		return err
	}

	dbPath := opts.Save
	if dbPath == "" {
		dbPath = ":memory:"
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			opts.logger().Error("error closing database", "error", closeErr)
		}
	}()

	seed := opts.Seed
	if seed == 0 {
		seed = opts.config().Session.Seed
	}
	sopts := append(opts.sessionOptions(), session.WithSeed(seed))
	if opts.IDs != nil {
		sopts = append(sopts, session.WithIDGenerator(opts.IDs))
	}

	// Ctrl-C stops the walk between steps; the journal stays consistent.
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, snap, err := session.New(ctx, st, res.Tree, sopts...)
	if err != nil {
		return f.fail(ExitCommandError, ErrCodeStoreFailed, "failed to start session", err)
	}
	if len(snap.Playheads) == 0 {
		return f.fail(ExitFailure, ErrCodeInvalidTree, "playtree spawns no playheads", nil)
	}

	result := SimulateResult{Session: s.ID(), Seed: s.Seed(), Event: string(ev), Steps: []SimulateStep{}}
	f.Printf("Session %s (seed %d)\n", s.ID(), s.Seed())
	if v, ok := snap.CurrentView(); ok {
		f.Printf("  start    %s: %s\n", v.ID, position(v))
	}

	for i := 1; i <= opts.Steps; i++ {
		if ctx.Err() != nil {
			opts.logger().Info("simulation interrupted", "step", i)
			break
		}
		actedOn := s.Snapshot().Current
		snap, err = s.Advance(ctx, ev)
		if err != nil {
			return f.fail(ExitCommandError, ErrCodeContract, fmt.Sprintf("advance %d failed", i), err)
		}
		v, _ := snap.Playhead(actedOn)
		step := simulateStep(i, v)
		if step.Outcome == string(engine.StepReset) {
			result.Resets++
		}
		result.Steps = append(result.Steps, step)
		f.Printf("%3d %-9s %s: %s%s\n", i, step.Outcome, step.Playhead, position(v), routeSuffix(step))
	}

	if f.JSON() {
		return f.Success(result)
	}
	if opts.Save != "" {
		f.Printf("Saved session %s to %s\n", s.ID(), opts.Save)
	}
	return nil
}

func simulateStep(i int, v engine.PlayheadView) SimulateStep {
	step := SimulateStep{
		Step:     i,
		Playhead: v.ID,
		Node:     v.Node,
		Item:     v.ItemID,
		Mult:     v.Mult,
		Outcome:  string(v.Last.Kind),
		Failure:  string(v.Last.Failure),
		Stopped:  v.Stopped,
	}
	for _, r := range v.Last.Route {
		step.Route = append(step.Route, r.String())
	}
	return step
}

// position renders a playhead's node and item for text output.
func position(v engine.PlayheadView) string {
	item := v.ItemID
	if item == "" {
		item = "-"
	}
	out := fmt.Sprintf("%s/%s", v.Node, item)
	if v.Mult > 0 {
		out += fmt.Sprintf(" x%d", v.Mult+1)
	}
	if v.Stopped {
		out += " [stopped]"
	}
	return out
}

func routeSuffix(step SimulateStep) string {
	var parts []string
	if len(step.Route) > 0 {
		parts = append(parts, "via "+strings.Join(step.Route, ", "))
	}
	if step.Failure != "" {
		parts = append(parts, step.Failure)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}
