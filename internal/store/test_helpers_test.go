package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestStore creates a new file-backed store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSession creates a session with minimal required fields.
func createTestSession(t *testing.T, s *Store, id string) Session {
	t.Helper()
	sess, err := s.CreateSession(context.Background(), Session{
		ID:            id,
		TreeHash:      "tree-hash",
		TreeJSON:      []byte(`{"id":"t","nodes":{}}`),
		Seed:          42,
		EngineVersion: "0.3.0",
		FormatVersion: "1",
	})
	require.NoError(t, err)
	return sess
}

// testOperation creates an operation with a fixed snapshot hash.
func testOperation(sessionID string, seq int64, kind OpKind) Operation {
	return Operation{
		SessionID:    sessionID,
		Seq:          seq,
		Kind:         kind,
		SnapshotHash: "hash-" + string(kind),
	}
}
