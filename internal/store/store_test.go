package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	require.NoError(t, s.verifyPragma("journal_mode", "wal"))
	require.NoError(t, s.verifyPragma("synchronous", "1"))
	require.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	require.NoError(t, s.verifyPragma("foreign_keys", "1"))
	require.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	s1, err := Open(path)
	require.NoError(t, err)
	_, err = s1.WriteRun(ctx, createTestRecord(t, "top"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	runs, err := s2.ListRuns(ctx, "")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.WriteRun(ctx, createTestRecord(t, "mem"))
	require.NoError(t, err)

	// The single pooled connection keeps the in-memory database alive
	runs, err := s.ListRuns(ctx, "mem")
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestOpen_BadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "runs.db"))
	require.Error(t, err)
}

func TestClose_Twice(t *testing.T) {
	s := &Store{}
	assert.NoError(t, s.Close())
}

func TestQuery(t *testing.T) {
	s := createTestStore(t, "run-1")
	ctx := context.Background()
	_, err := s.WriteRun(ctx, createTestRecord(t, "top"))
	require.NoError(t, err)

	rows, err := s.Query(ctx, `SELECT COUNT(*) FROM vertex_domains WHERE run_id = ?`, "run-1")
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var n int
	require.NoError(t, rows.Scan(&n))
	assert.Equal(t, 4, n)
}
