// Package ratelimit guards the submission endpoint with a fixed-window
// counter per client identity, stored in the shared KV service.
package ratelimit

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/staysign/guestreg/internal/metrics"
	"github.com/staysign/guestreg/internal/store"
	"github.com/staysign/guestreg/pkg/logger"
)

const keyPrefix = "rl:"

type Limiter struct {
	kv     store.KV
	window time.Duration
	max    int
}

func New(kv store.KV, window time.Duration, max int) *Limiter {
	return &Limiter{kv: kv, window: window, max: max}
}

// Allow counts one attempt for identity and reports whether it is within
// the window ceiling. The first attempt in a fresh window creates the
// counter with an expiry at window end. A store failure allows the request:
// availability is preferred over strict enforcement here.
func (l *Limiter) Allow(ctx context.Context, identity string) bool {
	key := l.key(identity)

	count, err := l.kv.Incr(ctx, key, l.window)
	if err != nil {
		metrics.RateLimitStoreErrors.Inc()
		logger.WarnContext(ctx, "rate limit store error, failing open", "error", err)
		return true
	}

	return count <= int64(l.max)
}

// key hashes the identity so raw network addresses never appear as store
// keys.
func (l *Limiter) key(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return keyPrefix + fmt.Sprintf("%x", sum)
}
