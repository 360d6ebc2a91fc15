package store

import (
	"context"
	"fmt"
)

// SessionState is a session with its full journal, for replay and
// inspection.
type SessionState struct {
	Session    Session
	Operations []Operation
	LastSeq    int64
	LastHash   string         // snapshot hash after the last operation
	Counts     map[OpKind]int // operations per kind
	Draws      int            // total random values consumed
}

// GetSessionState loads a session and its journal in one call.
func (s *Store) GetSessionState(ctx context.Context, id string) (SessionState, error) {
	sess, err := s.ReadSession(ctx, id)
	if err != nil {
		return SessionState{}, fmt.Errorf("get session state: %w", err)
	}
	ops, err := s.ReadOperations(ctx, id)
	if err != nil {
		return SessionState{}, fmt.Errorf("get session state: %w", err)
	}

	state := SessionState{
		Session:    sess,
		Operations: ops,
		Counts:     make(map[OpKind]int),
	}
	for _, op := range ops {
		state.Counts[op.Kind]++
		state.Draws += len(op.Draws.Selector) + len(op.Draws.Edge)
		if op.Seq > state.LastSeq {
			state.LastSeq = op.Seq
			state.LastHash = op.SnapshotHash
		}
	}
	return state, nil
}
