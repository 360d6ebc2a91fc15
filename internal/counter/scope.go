package counter

import "github.com/roach88/playtree/internal/playtree"

// Snapshot is the cached content of one scope bucket.
type Snapshot struct {
	Scope   int     `json:"scope"`
	Entries []Entry `json:"entries"`
}

// CacheAndZero snapshots every counter under scope and then resets them to
// zero. Scopes with no tracked counters yield an empty snapshot.
func (s *Store) CacheAndZero(scope int) Snapshot {
	idx := s.byScope[scope]
	snap := Snapshot{Scope: scope, Entries: make([]Entry, 0, len(idx))}
	for _, i := range idx {
		snap.Entries = append(snap.Entries, Entry{Key: s.keys[i], Count: s.counts[i], Limit: s.limits[i]})
	}
	if s.recording {
		s.journal = append(s.journal, Change{index: -1, snapshot: &snap})
	}
	for _, i := range idx {
		s.counts[i] = 0
	}
	return snap
}

// Restore writes a snapshot back. Keys that are not part of this store's
// layout are ignored.
func (s *Store) Restore(snap Snapshot) {
	for _, e := range snap.Entries {
		if i, ok := s.index[e.Key]; ok && e.Key.Scope == snap.Scope {
			s.set(i, e.Count)
		}
	}
}

// ZeroScoped resets every counter outside the default scope. Default-scope
// counters keep their values across playhead resets.
func (s *Store) ZeroScoped() {
	for i, k := range s.keys {
		if k.Scope != playtree.DefaultScope {
			s.set(i, 0)
		}
	}
}

// ScopeEntries returns the counters filed under scope, in layout order.
func (s *Store) ScopeEntries(scope int) []Entry {
	idx := s.byScope[scope]
	out := make([]Entry, 0, len(idx))
	for _, i := range idx {
		out = append(out, Entry{Key: s.keys[i], Count: s.counts[i], Limit: s.limits[i]})
	}
	return out
}
