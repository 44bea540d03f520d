// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/metrics"
)

// IncrWithTTL increments a plain counter key and returns the new value. The
// expiry is stamped only when this increment created the key, so a counter
// window keeps its original deadline. Used by the quota accounting, which
// runs outside the JSON key namespaces.
func (c *Cache) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := c.rdb.Incr(opCtx, key).Result()
	if err != nil {
		metrics.IncCacheOperation("incr", "error")
		return 0, apperr.Wrap(apperr.ErrCache, fmt.Sprintf("Cache error: %v", err), err)
	}
	if n == 1 {
		if err := c.rdb.Expire(opCtx, key, ttl).Err(); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("counter expire failed")
		}
	}
	metrics.IncCacheOperation("incr", "ok")
	return n, nil
}

// GetInt reads a counter key; a missing key reads as zero.
func (c *Cache) GetInt(ctx context.Context, key string) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := c.rdb.Get(opCtx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrCache, fmt.Sprintf("Cache error: %v", err), err)
	}
	return n, nil
}
