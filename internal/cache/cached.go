// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"time"
)

// Cached is the read-through composition every provider lookup uses: return
// the cached value if present, otherwise compute, schedule a background
// write and return the fresh value. Compute errors pass through unchanged
// and cache nothing; a failing cache read surfaces instead of silently
// recomputing, so a broken Redis shows up as the cache failure it is.
func Cached[T any](ctx context.Context, c *Cache, key Key, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	hit, err := Get[T](ctx, c, key)
	if err != nil {
		var zero T
		return zero, err
	}
	if hit != nil {
		return *hit, nil
	}

	value, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.SetInBackground(key, value, ttl)
	return value, nil
}
