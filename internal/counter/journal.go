package counter

// Change is one recorded mutation: either a single counter's prior value
// or a whole-scope snapshot taken by CacheAndZero.
type Change struct {
	index    int
	before   int
	snapshot *Snapshot
}

// Delta is the ordered list of changes made by one step.
type Delta []Change

// Snapshots returns the scope snapshots recorded in d, in the order they
// were taken.
func (d Delta) Snapshots() []Snapshot {
	var out []Snapshot
	for _, c := range d {
		if c.snapshot != nil {
			out = append(out, *c.snapshot)
		}
	}
	return out
}

// Begin starts recording mutations. Any uncommitted journal is discarded.
func (s *Store) Begin() {
	s.recording = true
	s.journal = s.journal[:0]
}

// Mark returns a position in the current journal for UndoTo.
func (s *Store) Mark() int {
	return len(s.journal)
}

// UndoTo reverts every change recorded after mark and drops them from the
// journal.
func (s *Store) UndoTo(mark int) {
	if mark < 0 || mark > len(s.journal) {
		return
	}
	s.undo(s.journal[mark:])
	s.journal = s.journal[:mark]
}

// Commit stops recording and returns the changes made since Begin.
func (s *Store) Commit() Delta {
	d := append(Delta(nil), s.journal...)
	s.recording = false
	s.journal = s.journal[:0]
	return d
}

// Rollback reverts everything since Begin and stops recording.
func (s *Store) Rollback() {
	s.UndoTo(0)
	s.recording = false
}

// Revert undoes a committed delta. It must be applied to the store that
// produced it, with every later delta already reverted.
func (s *Store) Revert(d Delta) {
	s.undo(d)
}

func (s *Store) undo(d []Change) {
	rec := s.recording
	s.recording = false
	for i := len(d) - 1; i >= 0; i-- {
		c := d[i]
		if c.snapshot != nil {
			s.Restore(*c.snapshot)
			continue
		}
		s.counts[c.index] = c.before
	}
	s.recording = rec
}
