package store

import (
	"context"
	"fmt"
)

// CreateSession inserts a session and assigns its CreatedSeq, one past the
// highest existing value. Uses ON CONFLICT(id) DO NOTHING for idempotency;
// the returned session carries the stored CreatedSeq either way.
func (s *Store) CreateSession(ctx context.Context, sess Session) (Session, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions
		(id, tree_hash, tree_json, seed, created_seq, engine_version, format_version)
		SELECT ?, ?, ?, ?, COALESCE(MAX(created_seq), 0) + 1, ?, ?
		FROM sessions WHERE true
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.TreeHash,
		string(sess.TreeJSON),
		sess.Seed,
		sess.EngineVersion,
		sess.FormatVersion,
	)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return s.ReadSession(ctx, sess.ID)
}

// AppendOperation appends one operation to a session's journal.
// Uses ON CONFLICT DO NOTHING for idempotency - rewriting the same
// (session, seq) is silently ignored.
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (s *Store) AppendOperation(ctx context.Context, op Operation) error {
	drawsJSON, err := marshalDraws(op.Draws)
	if err != nil {
		return fmt.Errorf("append operation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO operations
		(session_id, seq, kind, event, direction, draws_json, snapshot_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		op.SessionID,
		op.Seq,
		string(op.Kind),
		op.Event,
		op.Direction,
		drawsJSON,
		op.SnapshotHash,
	)
	if err != nil {
		return fmt.Errorf("append operation: %w", err)
	}
	return nil
}

// DeleteSession removes a session and, by cascade, its operations.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete session %s: %w", id, ErrNotFound)
	}
	return nil
}
