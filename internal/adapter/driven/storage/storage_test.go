package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bgr8Dev/B8-Calcom-Server/internal/config"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpen_Backends(t *testing.T) {
	mr := miniredis.RunT(t)
	key := []byte("0123456789abcdef0123456789abcdef")

	tests := []struct {
		name    string
		opts    Options
		wantEnc bool
	}{
		{name: "sqlite plaintext", opts: Options{Backend: config.BackendSQLite, DBPath: filepath.Join(t.TempDir(), "a.db")}},
		{name: "sqlite encrypted", opts: Options{Backend: config.BackendSQLite, DBPath: filepath.Join(t.TempDir(), "b.db"), SecretKey: key}, wantEnc: true},
		{name: "redis", opts: Options{Backend: config.BackendRedis, RedisAddr: mr.Addr(), SecretKey: key}, wantEnc: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			stores, err := Open(ctx, tt.opts, discardLogger())
			require.NoError(t, err)
			t.Cleanup(func() { _ = stores.Close() })

			assert.Equal(t, tt.wantEnc, stores.Encrypted)
			require.NoError(t, stores.Ping(ctx))

			require.NoError(t, stores.Credentials.Put(ctx, model.Credential{SubjectID: "uid-" + tt.name, APIKey: "k", ExternalUsername: "u"}))
			cred, err := stores.Credentials.Get(ctx, "uid-"+tt.name)
			require.NoError(t, err)
			require.NotNil(t, cred)
			assert.Equal(t, "k", cred.APIKey)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "unknown backend", opts: Options{Backend: "mongo"}},
		{name: "short key", opts: Options{Backend: config.BackendSQLite, SecretKey: []byte("short")}},
		{name: "redis unreachable", opts: Options{Backend: config.BackendRedis, RedisAddr: "127.0.0.1:1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.opts, discardLogger())
			assert.Error(t, err)
		})
	}
}
