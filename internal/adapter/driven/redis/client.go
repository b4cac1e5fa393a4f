// Package redis implements the credential, legacy credential and profile
// store ports as JSON documents in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// Key namespaces. Each record lives at <namespace><subject id>.
const (
	credentialPrefix = "calcom:credentials:"
	legacyPrefix     = "calcom:legacy:"
	profilePrefix    = "calcom:profiles:"
)

// Client wraps a go-redis client with JSON document helpers.
type Client struct {
	rdb *goredis.Client
}

// NewClient connects to Redis and verifies the connection with PING.
func NewClient(ctx context.Context, addr, password string, db int) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return &Client{rdb: rdb}, nil
}

// Ping checks the connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the underlying connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// getDoc decodes the JSON document at key into v. It reports false when
// the key does not exist.
func (c *Client) getDoc(ctx context.Context, key string, v any) (bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// setDoc stores v as a JSON document at key with no expiry.
func (c *Client) setDoc(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, data, 0).Err()
}

// del removes key. Missing keys are not an error.
func (c *Client) del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}
