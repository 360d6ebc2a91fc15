package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"

	"github.com/roach88/playtree/internal/engine"
	"github.com/roach88/playtree/internal/playtree"
	"github.com/roach88/playtree/internal/store"
)

// Session is a journaled playback session. All methods are safe for
// concurrent use; operations are applied and recorded one at a time.
type Session struct {
	mu    sync.Mutex
	id    string
	seed  int64
	st    *store.Store
	eng   *engine.Engine
	rng   *rand.Rand
	clock *engine.Clock
	log   *slog.Logger
}

type options struct {
	seed       int64
	ids        IDGenerator
	logger     *slog.Logger
	engineOpts []engine.EngineOption
}

// Option configures New and Open.
type Option func(*options)

// WithSeed fixes the RNG seed. Zero means draw one from crypto/rand.
// Ignored by Open, which uses the recorded seed.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithIDGenerator replaces the default UUIDv7 session ids.
func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

// WithLogger sets the logger for the session and its engine.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEngineOptions passes options through to engine.New.
func WithEngineOptions(opts ...engine.EngineOption) Option {
	return func(o *options) { o.engineOpts = append(o.engineOpts, opts...) }
}

func buildOptions(opts []Option) options {
	o := options{ids: UUIDv7Generator{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) newEngine() *engine.Engine {
	opts := append([]engine.EngineOption{engine.WithLogger(o.logger)}, o.engineOpts...)
	return engine.New(opts...)
}

// New creates a session for t, loads it, and journals the load.
func New(ctx context.Context, st *store.Store, t *playtree.Playtree, opts ...Option) (*Session, engine.Snapshot, error) {
	o := buildOptions(opts)
	if t == nil {
		return nil, engine.Snapshot{}, errors.New("new session: nil playtree")
	}

	seed := o.seed
	if seed == 0 {
		var err error
		if seed, err = NewSeed(); err != nil {
			return nil, engine.Snapshot{}, fmt.Errorf("new session: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := playtree.Encode(&buf, t, playtree.FormatJSON); err != nil {
		return nil, engine.Snapshot{}, fmt.Errorf("new session: encode tree: %w", err)
	}
	hash, err := playtree.ContentHash(t)
	if err != nil {
		return nil, engine.Snapshot{}, fmt.Errorf("new session: %w", err)
	}

	rec, err := st.CreateSession(ctx, store.Session{
		ID:            o.ids.Generate(),
		TreeHash:      hash,
		TreeJSON:      buf.Bytes(),
		Seed:          seed,
		EngineVersion: playtree.EngineVersion,
		FormatVersion: playtree.FormatVersion,
	})
	if err != nil {
		return nil, engine.Snapshot{}, fmt.Errorf("new session: %w", err)
	}

	s := &Session{
		id:    rec.ID,
		seed:  seed,
		st:    st,
		eng:   o.newEngine(),
		rng:   newRNG(seed, 0),
		clock: engine.NewClock(),
		log:   o.logger.With("session", rec.ID),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r, sel, edge := recording(s.rng)
	snap, err := s.eng.Load(t, r)
	if err != nil {
		return nil, snap, fmt.Errorf("new session: %w", err)
	}
	if err := s.record(ctx, store.Operation{Kind: store.OpLoad}, sel, edge); err != nil {
		return nil, snap, err
	}
	s.log.Info("session created", "tree", hash, "seed", seed, "playheads", len(snap.Playheads))
	return s, snap, nil
}

// Open rebuilds a stored session by replaying its journal. A journal whose
// replay disagrees with a recorded state hash is refused with a
// *DivergenceError.
func Open(ctx context.Context, st *store.Store, id string, opts ...Option) (*Session, engine.Snapshot, error) {
	o := buildOptions(opts)

	state, err := st.GetSessionState(ctx, id)
	if err != nil {
		return nil, engine.Snapshot{}, fmt.Errorf("open session: %w", err)
	}
	if state.Session.EngineVersion != playtree.EngineVersion {
		o.logger.Warn("session recorded by a different engine version",
			"session", id, "recorded", state.Session.EngineVersion, "current", playtree.EngineVersion)
	}
	t, err := decodeTree(state.Session)
	if err != nil {
		return nil, engine.Snapshot{}, fmt.Errorf("open session: %w", err)
	}

	eng := o.newEngine()
	results, err := replay(eng, t, state.Operations)
	if err != nil {
		return nil, engine.Snapshot{}, fmt.Errorf("open session: %w", err)
	}
	for _, res := range results {
		if res.Got != res.Want {
			return nil, engine.Snapshot{}, &DivergenceError{SessionID: id, Seq: res.Seq, Want: res.Want, Got: res.Got}
		}
	}

	s := &Session{
		id:    id,
		seed:  state.Session.Seed,
		st:    st,
		eng:   eng,
		rng:   newRNG(state.Session.Seed, state.Draws),
		clock: engine.NewClockAt(state.LastSeq),
		log:   o.logger.With("session", id),
	}
	s.log.Debug("session reopened", "operations", len(state.Operations), "last_seq", state.LastSeq)
	return s, eng.Snapshot(), nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Seed returns the RNG seed the session was created with.
func (s *Session) Seed() int64 { return s.seed }

// Engine returns the session's engine for read-only inspection. Driving
// it directly bypasses the journal.
func (s *Session) Engine() *engine.Engine { return s.eng }

// Snapshot returns the current engine state.
func (s *Session) Snapshot() engine.Snapshot { return s.eng.Snapshot() }

// Advance applies ev to the current playhead and journals it. Contract
// errors from the engine are returned without journaling.
func (s *Session) Advance(ctx context.Context, ev engine.Event) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, sel, edge := recording(s.rng)
	snap, err := s.eng.Advance(ev, r)
	if err != nil {
		return snap, err
	}
	return snap, s.record(ctx, store.Operation{Kind: store.OpAdvance, Event: string(ev)}, sel, edge)
}

// Rewind undoes the current playhead's last traversal and journals it.
func (s *Session) Rewind(ctx context.Context) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.eng.Rewind()
	if err != nil {
		return snap, err
	}
	return snap, s.record(ctx, store.Operation{Kind: store.OpRewind}, nil, nil)
}

// Switch moves the current playhead selection and journals it.
func (s *Session) Switch(ctx context.Context, d engine.Direction) (engine.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.eng.SwitchPlayhead(d)
	if err != nil {
		return snap, err
	}
	return snap, s.record(ctx, store.Operation{Kind: store.OpSwitch, Direction: int(d)}, nil, nil)
}

// record stamps op with the next seq, the draws taken, and the current
// state hash, then appends it. Callers hold s.mu.
func (s *Session) record(ctx context.Context, op store.Operation, sel, edge *recorder) error {
	hash, err := s.eng.StateHash()
	if err != nil {
		return fmt.Errorf("journal %s: %w", op.Kind, err)
	}
	op.SessionID = s.id
	op.Seq = s.clock.Next()
	op.SnapshotHash = hash
	if sel != nil {
		op.Draws.Selector = sel.drawn
	}
	if edge != nil {
		op.Draws.Edge = edge.drawn
	}
	if err := s.st.AppendOperation(ctx, op); err != nil {
		// The engine has already moved; the journal is now behind it.
		s.log.Error("journal append failed", "seq", op.Seq, "kind", op.Kind, "error", err)
		return fmt.Errorf("journal %s: %w", op.Kind, err)
	}
	s.log.Debug("operation journaled", "seq", op.Seq, "kind", op.Kind, "draws", len(op.Draws.Selector)+len(op.Draws.Edge))
	return nil
}

func decodeTree(sess store.Session) (*playtree.Playtree, error) {
	t, err := playtree.Decode(bytes.NewReader(sess.TreeJSON), playtree.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decode stored tree: %w", err)
	}
	return t, nil
}
