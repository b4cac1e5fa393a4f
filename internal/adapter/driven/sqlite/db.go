// Package sqlite implements the credential, legacy credential and profile
// store ports on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

// Pool sizes. SQLite serialises writers, so the writer pool holds a single
// connection and lookups go through the reader pool.
const (
	maxWriterConns = 1
	maxReaderConns = 4
)

// filePragmas apply to on-disk databases. In-memory databases omit WAL.
const (
	commonPragmas = "_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	filePragmas   = "_pragma=journal_mode(WAL)&" + commonPragmas
)

// DB holds separate writer and reader pools over one SQLite database.
type DB struct {
	Writer *sql.DB
	Reader *sql.DB
}

// NewDB opens the database file at dbPath in WAL mode, creating it if needed.
func NewDB(ctx context.Context, dbPath string) (*DB, error) {
	if dbPath == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	return open(ctx, fileDSN(dbPath))
}

// NewMemoryDB opens a named shared-cache in-memory database. Connections
// opened with the same name see the same data until the last one closes.
func NewMemoryDB(ctx context.Context, name string) (*DB, error) {
	return open(ctx, memoryDSN(name))
}

func fileDSN(path string) string {
	return fmt.Sprintf("file:%s?%s", path, filePragmas)
}

func memoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", url.PathEscape(name), commonPragmas)
}

func open(ctx context.Context, dsn string) (*DB, error) {
	writer, err := openPool(ctx, dsn, maxWriterConns)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}

	reader, err := openPool(ctx, dsn, maxReaderConns)
	if err != nil {
		_ = writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}

	return &DB{Writer: writer, Reader: reader}, nil
}

func openPool(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(maxConns)

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Ping checks that the reader pool is usable.
func (db *DB) Ping(ctx context.Context) error {
	return db.Reader.PingContext(ctx)
}

// Close closes both pools and joins their errors.
func (db *DB) Close() error {
	var errs []error
	if err := db.Reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close reader: %w", err))
	}
	if err := db.Writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close writer: %w", err))
	}
	return errors.Join(errs...)
}
