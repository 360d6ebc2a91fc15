package store

// OpKind is the kind of a journaled operation.
type OpKind string

const (
	OpLoad    OpKind = "load"
	OpAdvance OpKind = "advance"
	OpRewind  OpKind = "rewind"
	OpSwitch  OpKind = "switch"
)

// Session is one loaded playtree.
type Session struct {
	ID            string
	TreeHash      string
	TreeJSON      []byte
	Seed          int64
	CreatedSeq    int64 // assigned by CreateSession
	EngineVersion string
	FormatVersion string
}

// Draws are the random values one operation consumed, per source, in
// the order they were drawn.
type Draws struct {
	Selector []float64 `json:"selector,omitempty"`
	Edge     []float64 `json:"edge,omitempty"`
}

// Empty reports whether no values were drawn.
func (d Draws) Empty() bool {
	return len(d.Selector) == 0 && len(d.Edge) == 0
}

// Operation is one journaled engine call.
type Operation struct {
	SessionID    string
	Seq          int64
	Kind         OpKind
	Event        string // advance only
	Direction    int    // switch only
	Draws        Draws
	SnapshotHash string
}
