// Package storage provides the client's persistent key/value storage. It plays
// the role local storage plays in a browser: small string values that survive
// restarts of the client.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// supported backends
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Storage is a flat string key/value store.
type Storage interface {
	// returns the value and whether it was present
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	// removing a missing key is not an error
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

// selects and configures a backend
type Options struct {
	Backend  string
	Path     string
	RedisURL string
}

// opens the backend named in opts
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStorage(opts.Path)

	case BackendMemory:
		return NewMemoryStorage(), nil

	case BackendRedis:
		return NewRedisStorageFromURL(ctx, opts.RedisURL)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
