package harness

// TraceEvent is one executed step as seen after it ran.
//
// Playhead is the playhead the step acted on (the current one before an
// advance or rewind, the newly selected one after a load or switch);
// Current is the selection after the step.
type TraceEvent struct {
	Seq      int64    `json:"seq"`
	Op       string   `json:"op"`
	Event    string   `json:"event,omitempty"`
	Playhead string   `json:"playhead"`
	Current  string   `json:"current"`
	Node     string   `json:"node"`
	Item     string   `json:"item,omitempty"`
	Mult     int      `json:"mult"`
	Outcome  string   `json:"outcome"`
	Route    []string `json:"route,omitempty"`
	Failure  string   `json:"failure,omitempty"`
	Stopped  bool     `json:"stopped"`
	History  int      `json:"history"`
	Error    string   `json:"error,omitempty"` // contract error code
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per executed step, load included.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
