package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/playtree/internal/counter"
	"github.com/roach88/playtree/internal/playtree"
	"github.com/roach88/playtree/internal/scope"
)

// DefaultMaxTraversalSteps is the default cap on hops per edge traversal.
const DefaultMaxTraversalSteps = 10000

// Engine decides what each playhead plays next.
//
// Every public operation runs to completion under one lock and either
// commits its whole result or leaves the state unchanged.
type Engine struct {
	mu sync.Mutex

	log      *slog.Logger
	clock    SeqSource
	maxSteps int

	tree      *playtree.Playtree
	scopes    *scope.Resolution
	seed      *counter.Store
	playheads map[string]*Playhead
	order     []string // playhead ids by root index, then id
	current   string
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithMaxTraversalSteps sets the hop cap for one edge traversal.
func WithMaxTraversalSteps(n int) EngineOption {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithClock sets the source of message sequence numbers.
func WithClock(c SeqSource) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an engine with nothing loaded.
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		log:      slog.Default(),
		clock:    NewClock(),
		maxSteps: DefaultMaxTraversalSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load replaces all state with a fresh walk of t: scopes are resolved,
// counters seeded, and one playhead is started per root. Roots naming
// missing nodes are skipped. r supplies draws for selector roots.
func (e *Engine) Load(t *playtree.Playtree, r Randoms) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if t == nil {
		return e.snapshot(), &RuntimeError{
			Code:    ErrCodeNotLoaded,
			Message: "load called with a nil playtree",
		}
	}

	for _, issue := range playtree.Validate(t) {
		e.log.Warn("playtree issue", "code", issue.Code, "severity", issue.Severity, "path", issue.Path, "message", issue.Message)
	}

	res := scope.Resolve(t)
	for _, id := range res.Ambiguous {
		e.log.Warn("ambiguous scope nesting", "node", id, "resolved", res.Node(id))
	}
	seed := counter.New(t, res)

	type rooted struct {
		id   string
		root playtree.Playroot
	}
	var roots []rooted
	for id, root := range t.Roots {
		if t.Node(id) == nil {
			e.log.Warn("root on missing node skipped", "node", id)
			continue
		}
		roots = append(roots, rooted{id: id, root: root})
	}
	sort.Slice(roots, func(i, j int) bool {
		if roots[i].root.Index != roots[j].root.Index {
			return roots[i].root.Index < roots[j].root.Index
		}
		return roots[i].id < roots[j].id
	})

	e.tree = t
	e.scopes = res
	e.seed = seed
	e.playheads = make(map[string]*Playhead, len(roots))
	e.order = make([]string, 0, len(roots))
	e.current = ""

	for _, rt := range roots {
		p := &Playhead{
			ID:       rt.id,
			Name:     rt.root.Name,
			Index:    rt.root.Index,
			Counters: seed.Clone(),
			Last:     Step{Kind: StepStart},
		}
		e.enter(p, rt.id, r)
		e.playheads[p.ID] = p
		e.order = append(e.order, p.ID)
		e.say(p, slog.LevelInfo, "started at %s", describe(t, p.Position))
	}
	if len(e.order) > 0 {
		e.current = e.order[0]
	} else {
		e.log.Warn("playtree has no playable roots")
	}

	e.log.Info("playtree loaded", "nodes", len(t.Nodes), "scopes", len(t.Scopes), "playheads", len(e.order))
	return e.snapshot(), nil
}

// enter places p at the start of node id, counting a play of the node when
// it offers an item.
func (e *Engine) enter(p *Playhead, id string, r Randoms) {
	c := p.Counters
	node := e.tree.Node(id)
	item, ok := initialIndex(c, node, r.Selector)
	if ok {
		c.Increment(c.NodeKey(id))
	}
	p.Position = Position{Node: id, Item: item}
}

// Advance moves the current playhead forward on ev. The playhead first
// steps within its node; when the node is exhausted it traverses edges.
// If traversal fails the playhead is reset, marked stopped, and the
// current selection moves to the next playhead.
func (e *Engine) Advance(ev Event, r Randoms) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.target("advance")
	if err != nil {
		return e.snapshot(), err
	}
	if !ev.Valid() {
		return e.snapshot(), errUnknownEvent(ev)
	}

	e.advance(p, ev, r)
	return e.snapshot(), nil
}

func (e *Engine) advance(p *Playhead, ev Event, r Randoms) {
	c := p.Counters
	node := e.tree.Node(p.Node)
	prev := p.Position
	p.Stopped = false

	c.Begin()
	if ev == SongEnded {
		if item := node.Item(p.Item); item != nil {
			c.Increment(c.ItemKey(node.ID, item.ID))
		}
	}

	if next, ok := advanceWithin(c, node, prev, r.Selector); ok {
		p.Position = next
		p.History = append(p.History, HistoryNode{Prev: prev, delta: c.Commit()})
		p.Last = Step{Kind: StepIntra, Event: ev}
		e.say(p, slog.LevelInfo, "now playing %s", describe(e.tree, p.Position))
		return
	}

	mark := c.Mark()
	tr, err := e.traverse(p, r)
	if err == nil {
		delta := c.Commit()
		last := tr.route[len(tr.route)-1]
		p.Position = tr.landing
		p.History = append(p.History, HistoryNode{
			Prev:   prev,
			Edge:   &last,
			Route:  tr.route,
			Cached: delta.Snapshots(),
			delta:  delta,
		})
		p.Last = Step{Kind: StepTraversed, Event: ev, Route: tr.route}
		e.say(p, slog.LevelInfo, "traversed %s, now playing %s", last, describe(e.tree, p.Position))
		return
	}

	c.UndoTo(mark)
	c.Commit()
	e.reset(p, ev, r, err, tr.route)
}

// reset returns p to the start of its run after a failed traversal. Scoped
// counters are zeroed, history is cleared, and the current selection moves
// on to the next playhead.
func (e *Engine) reset(p *Playhead, ev Event, r Randoms, cause error, route []playtree.EdgeRef) {
	code := ErrCodeNoEligibleEdge
	if IsTraversalLimit(cause) {
		code = ErrCodeTraversalLimit
	}
	e.say(p, slog.LevelWarn, "traversal failed: %v", cause)

	start := p.Node
	if len(p.History) > 0 {
		start = p.History[0].Prev.Node
	}
	p.Counters.ZeroScoped()
	p.History = nil
	e.enter(p, start, r)
	p.Stopped = true
	p.Last = Step{Kind: StepReset, Event: ev, Route: route, Failure: code}
	e.say(p, slog.LevelWarn, "reset to %s and stopped", describe(e.tree, p.Position))

	e.moveCurrent(Next)
}

// Rewind undoes the current playhead's last advance. With no history it
// changes nothing.
func (e *Engine) Rewind() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := e.target("rewind")
	if err != nil {
		return e.snapshot(), err
	}
	if len(p.History) == 0 {
		return e.snapshot(), nil
	}

	h := p.History[len(p.History)-1]
	p.History = p.History[:len(p.History)-1]
	p.Counters.Revert(h.delta)
	p.Position = h.Prev
	p.Stopped = false
	p.Last = Step{Kind: StepRewind, Route: h.Route}
	e.say(p, slog.LevelInfo, "rewound to %s", describe(e.tree, p.Position))
	return e.snapshot(), nil
}

// SwitchPlayhead moves the current selection by d, wrapping around. No
// playhead's own state changes. With no playheads it does nothing.
func (e *Engine) SwitchPlayhead(d Direction) (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tree == nil {
		return e.snapshot(), errNotLoaded("switch")
	}
	if d != Prev && d != Next {
		return e.snapshot(), errBadDirection(d)
	}
	if len(e.order) == 0 {
		return e.snapshot(), nil
	}
	e.moveCurrent(d)
	e.log.Info("switched playhead", "current", e.current)
	return e.snapshot(), nil
}

func (e *Engine) moveCurrent(d Direction) {
	n := len(e.order)
	if n == 0 {
		return
	}
	i := 0
	for j, id := range e.order {
		if id == e.current {
			i = j
			break
		}
	}
	e.current = e.order[((i+int(d))%n+n)%n]
}

// target returns the current playhead for op.
func (e *Engine) target(op string) (*Playhead, error) {
	if e.tree == nil {
		return nil, errNotLoaded(op)
	}
	p := e.playheads[e.current]
	if p == nil {
		return nil, errNoPlayhead(op)
	}
	return p, nil
}

// Snapshot returns the current view of every playhead.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// Counters returns the counter entries of playhead id.
func (e *Engine) Counters(id string) ([]counter.Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.playheads[id]
	if p == nil {
		return nil, false
	}
	return p.Counters.Entries(), true
}

// History returns a copy of playhead id's history, oldest first.
func (e *Engine) History(id string) ([]HistoryNode, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.playheads[id]
	if p == nil {
		return nil, false
	}
	return append([]HistoryNode(nil), p.History...), true
}

// Tree returns the loaded playtree, nil before Load.
func (e *Engine) Tree() *playtree.Playtree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree
}

// Scopes returns the scope resolution of the loaded playtree.
func (e *Engine) Scopes() *scope.Resolution {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scopes
}

// ParseEvent converts a wire name into an Event.
func ParseEvent(s string) (Event, error) {
	ev := Event(s)
	if !ev.Valid() {
		return "", errUnknownEvent(ev)
	}
	return ev, nil
}

// ParseDirection converts "next"/"prev" (or "+1"/"-1") into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "next", "+1", "1":
		return Next, nil
	case "prev", "-1":
		return Prev, nil
	}
	return 0, &RuntimeError{
		Code:    ErrCodeBadDirection,
		Message: fmt.Sprintf("unknown direction %q", s),
	}
}
