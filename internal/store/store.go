package store

import (
	"context"
	"fmt"
)

// Keys of the three persisted collections. Each value is a JSON array.
const (
	KeyLicenses    = "licenses"
	KeyUsers       = "users"
	KeyAssignments = "assignments"
)

type Entry struct {
	Key   string
	Value []byte
}

// KV is the key-value store behind the record collections.
type KV interface {
	Close() error

	// Get returns nil, nil when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes every entry or none of them.
	Put(ctx context.Context, entries ...Entry) error
}

type Options struct {
	Driver      string
	Path        string
	RedisAddr   string
	RedisPrefix string
}

// Open selects a driver by name.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Driver {
	case "", "bbolt":
		return OpenBBolt(opts.Path)
	case "redis":
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
