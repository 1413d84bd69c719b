package ports

import (
	"context"
	"time"
)

// CachedResponse represents a cached HTTP response.
type CachedResponse struct {
	StatusCode  int               `json:"status_code"`
	Fingerprint string            `json:"fingerprint"`
	Headers     map[string]string `json:"headers"`
	Body        []byte            `json:"body"`
	CreatedAt   time.Time         `json:"created_at"`
}

// IdempotencyCache defines the interface for idempotency caching operations.
type IdempotencyCache interface {
	// Get returns nil, nil if the key does not exist.
	Get(ctx context.Context, key string) (*CachedResponse, error)

	Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error

	// SetLock returns false if another request holds the lock.
	SetLock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	ReleaseLock(ctx context.Context, key string) error
}
