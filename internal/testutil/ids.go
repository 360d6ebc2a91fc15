package testutil

import (
	"fmt"
	"sync"
)

// FixedSessionIDs hands out predetermined session ids in order. Once the
// list runs out it falls back to "session-N" so a test that creates one
// session too many still gets a stable id.
type FixedSessionIDs struct {
	mu  sync.Mutex
	ids []string
	n   int
}

// NewFixedSessionIDs creates a generator over ids.
func NewFixedSessionIDs(ids ...string) *FixedSessionIDs {
	return &FixedSessionIDs{ids: append([]string(nil), ids...)}
}

// Generate returns the next id.
func (g *FixedSessionIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	if g.n <= len(g.ids) {
		return g.ids[g.n-1]
	}
	return fmt.Sprintf("session-%d", g.n)
}
