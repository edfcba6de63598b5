// Package store abstracts the key-value service backing registrations and
// rate-limit counters. Two implementations exist: Redis for real
// deployments and an in-memory fallback for local development and tests.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("key not found")

// KV is the key-value contract the rest of the service depends on:
// set-with-expiry, get, and an expiring counter.
type KV interface {
	// Set writes value under key with a per-key TTL. A zero TTL means no
	// expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Incr increments the counter at key and returns the new value. The TTL
	// is attached when the counter is first created and is not extended by
	// later increments.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
