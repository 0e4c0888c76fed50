// Package storage defines the key/value substrate that project snapshots are
// written to, with file system, Redis, S3 and Postgres backends.
package storage

import (
	"context"
	"fmt"
)

// Store is a string-keyed blob store. Values are replaced whole.
type Store interface {
	// Get returns the value stored under key, or apperr.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys returns every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Close releases connections held by the backend.
	Close() error
}

// Drivers accepted by Open.
const (
	DriverFS       = "fs"
	DriverRedis    = "redis"
	DriverS3       = "s3"
	DriverPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Driver      string
	Dir         string
	RedisURL    string
	RedisPrefix string
	S3          S3Config
	PostgresDSN string
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFS, "":
		return NewFS(cfg.Dir)
	case DriverRedis:
		return NewRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	case DriverPostgres:
		return NewPostgres(ctx, cfg.PostgresDSN)
	}
	return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
}
