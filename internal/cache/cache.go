package cache

import (
	"context"
	"fmt"
	"time"
)

// Store defines the key-value store used for durable client state. A ttl of
// zero means the entry never expires; the session record is stored that way.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = fmt.Errorf("cache: key not found")
