// Package storage opens the configured store backend and exposes its
// credential, legacy credential and profile repositories behind the ports.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	redisadapter "github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/redis"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/sealer"
	sqliteadapter "github.com/Bgr8Dev/B8-Calcom-Server/internal/adapter/driven/sqlite"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/config"
	"github.com/Bgr8Dev/B8-Calcom-Server/internal/domain/port/driven"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string // config.BackendSQLite (default) or config.BackendRedis
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SecretKey     []byte // nil stores API keys in plaintext
}

// Stores bundles the repositories of one backend.
type Stores struct {
	Credentials driven.CredentialStore
	Legacy      driven.LegacyCredentialStore
	Profiles    driven.ProfileStore

	// Encrypted reports whether API keys are sealed at rest.
	Encrypted bool

	ping  func(context.Context) error
	close func() error
}

// Open connects to the backend named in opts. For SQLite, pending
// migrations are applied before returning.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Stores, error) {
	s, err := sealer.New(opts.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("create sealer: %w", err)
	}
	if !s.Enabled() {
		logger.Warn("CREDENTIALS_SECRET_KEY not set, API keys are stored in plaintext")
	}

	switch opts.Backend {
	case config.BackendSQLite, "":
		return openSQLite(ctx, opts, s, logger)
	case config.BackendRedis:
		return openRedis(ctx, opts, s, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func openSQLite(ctx context.Context, opts Options, s *sealer.Sealer, logger *slog.Logger) (*Stores, error) {
	db, err := sqliteadapter.NewDB(ctx, opts.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("database opened", "path", opts.DBPath)

	if err := sqliteadapter.RunMigrations(db.Writer, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Stores{
		Credentials: sqliteadapter.NewCredentialRepo(db, s),
		Legacy:      sqliteadapter.NewLegacyCredentialRepo(db, s),
		Profiles:    sqliteadapter.NewProfileRepo(db),
		Encrypted:   s.Enabled(),
		ping:        db.Ping,
		close:       db.Close,
	}, nil
}

func openRedis(ctx context.Context, opts Options, s *sealer.Sealer, logger *slog.Logger) (*Stores, error) {
	client, err := redisadapter.NewClient(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	if err != nil {
		return nil, err
	}
	logger.Info("redis connected", "addr", opts.RedisAddr, "db", opts.RedisDB)

	return &Stores{
		Credentials: redisadapter.NewCredentialRepo(client, s),
		Legacy:      redisadapter.NewLegacyCredentialRepo(client, s),
		Profiles:    redisadapter.NewProfileRepo(client),
		Encrypted:   s.Enabled(),
		ping:        client.Ping,
		close:       client.Close,
	}, nil
}

// Ping checks that the backend is reachable.
func (s *Stores) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend connections.
func (s *Stores) Close() error {
	return s.close()
}
