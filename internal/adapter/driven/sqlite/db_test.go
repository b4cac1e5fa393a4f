package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"file:/data/calcom.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		fileDSN("/data/calcom.db"))
	assert.Equal(t,
		"file:TestX%2Fsub%3Fa=b?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		memoryDSN("TestX/sub?a=b"))
}

func TestNewDB_EmptyPath(t *testing.T) {
	_, err := NewDB(context.Background(), "")
	assert.Error(t, err)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "calcom.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	for range 2 {
		db, err := NewDB(ctx, path)
		require.NoError(t, err)
		require.NoError(t, RunMigrations(db.Writer, logger))
		require.NoError(t, db.Ping(ctx))
		require.NoError(t, db.Close())
	}
}
