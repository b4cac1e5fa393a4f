package sqlite

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/sealer"
)

// setupTestDB returns a migrated in-memory database private to the test.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewMemoryDB(context.Background(), t.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer, slog.New(slog.NewTextHandler(io.Discard, nil))))
	return db
}

// newTestSealer returns a Sealer with a fixed key, or a passthrough sealer
// when encrypted is false.
func newTestSealer(t *testing.T, encrypted bool) *sealer.Sealer {
	t.Helper()

	var key []byte
	if encrypted {
		key = []byte("0123456789abcdef0123456789abcdef")
	}
	s, err := sealer.New(key)
	require.NoError(t, err)
	return s
}
