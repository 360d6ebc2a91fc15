package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ReadSession returns the session with the given id.
// Returns an error wrapping ErrNotFound if the session does not exist.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tree_hash, tree_json, seed, created_seq, engine_version, format_version
		FROM sessions
		WHERE id = ?
	`, id)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	return sess, nil
}

// ListSessions returns every session ordered by creation.
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	return s.querySessions(ctx, `
		SELECT id, tree_hash, tree_json, seed, created_seq, engine_version, format_version
		FROM sessions
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`)
}

// FindSessionsByTree returns the sessions that loaded the tree with the
// given content hash, ordered by creation.
func (s *Store) FindSessionsByTree(ctx context.Context, treeHash string) ([]Session, error) {
	return s.querySessions(ctx, `
		SELECT id, tree_hash, tree_json, seed, created_seq, engine_version, format_version
		FROM sessions
		WHERE tree_hash = ?
		ORDER BY created_seq ASC, id COLLATE BINARY ASC
	`, treeHash)
}

func (s *Store) querySessions(ctx context.Context, query string, args ...any) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadOperations returns a session's journal ordered by seq.
// Returns an empty slice (not nil) if nothing was recorded.
func (s *Store) ReadOperations(ctx context.Context, sessionID string) ([]Operation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, seq, kind, event, direction, draws_json, snapshot_hash
		FROM operations
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	ops := []Operation{}
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return ops, nil
}

// LastSeq returns the highest operation seq recorded for a session, or 0
// if the journal is empty.
func (s *Store) LastSeq(ctx context.Context, sessionID string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(seq) FROM operations WHERE session_id = ?
	`, sessionID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	if !seq.Valid {
		return 0, nil
	}
	return seq.Int64, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (Session, error) {
	var (
		sess     Session
		treeJSON string
	)
	err := row.Scan(
		&sess.ID,
		&sess.TreeHash,
		&treeJSON,
		&sess.Seed,
		&sess.CreatedSeq,
		&sess.EngineVersion,
		&sess.FormatVersion,
	)
	if err != nil {
		return Session{}, err
	}
	sess.TreeJSON = []byte(treeJSON)
	return sess, nil
}

func scanOperation(row scanner) (Operation, error) {
	var (
		op        Operation
		kind      string
		drawsJSON string
	)
	err := row.Scan(
		&op.SessionID,
		&op.Seq,
		&kind,
		&op.Event,
		&op.Direction,
		&drawsJSON,
		&op.SnapshotHash,
	)
	if err != nil {
		return Operation{}, fmt.Errorf("scan operation: %w", err)
	}
	op.Kind = OpKind(kind)
	op.Draws, err = unmarshalDraws(drawsJSON)
	if err != nil {
		return Operation{}, fmt.Errorf("operation %s/%d: %w", op.SessionID, op.Seq, err)
	}
	return op, nil
}
