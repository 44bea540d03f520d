// SPDX-License-Identifier: MIT

// Package cache is occam's two-tier cache: a small process-local read tier
// in front of Redis, with writes flowing through a background writer so the
// request path never waits on Redis SETs. Values are JSON documents keyed
// by the namespaces in keys.go.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/occamtv/occam/internal/apperr"
	"github.com/occamtv/occam/internal/log"
	"github.com/occamtv/occam/internal/metrics"
)

const opTimeout = 2 * time.Second

// Config holds cache construction options.
type Config struct {
	// URL is the redis:// connection string.
	URL string
	// QueueSize bounds the background write queue; writes beyond it are
	// dropped and counted. Defaults to 1024.
	QueueSize int
	// LocalTTL caps how long the process-local tier may serve a remote read
	// without revisiting Redis. Zero disables the local tier.
	LocalTTL time.Duration
}

// Cache is safe for concurrent use.
type Cache struct {
	rdb    *redis.Client
	local  *localStore
	writer *writer
	logger zerolog.Logger
}

// New connects to Redis, verifies the connection and starts the background
// writer. The caller owns the lifecycle: Shutdown to drain, then Close.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 5

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Msg("connected to redis")

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}

	c := &Cache{
		rdb:    client,
		writer: newWriter(client, queueSize, logger),
		logger: logger,
	}
	if cfg.LocalTTL > 0 {
		c.local = newLocalStore(cfg.LocalTTL, time.Minute)
	}
	go c.writer.run()
	return c, nil
}

// Get reads a value. The local tier answers first when enabled; otherwise
// the call blocks on Redis. A miss is (nil, nil). Transport failures are
// cache errors, bytes that no longer decode into T are internal errors.
// Get never writes to Redis.
func Get[T any](ctx context.Context, c *Cache, key Key) (*T, error) {
	if c.local != nil {
		if data, ok := c.local.get(key.String()); ok {
			value := new(T)
			if err := json.Unmarshal(data, value); err != nil {
				return nil, apperr.Wrap(apperr.ErrInternal, "Failed to deserialize cached value", err)
			}
			metrics.IncCacheOperation("get", "local_hit")
			return value, nil
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := c.rdb.Get(opCtx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.IncCacheOperation("get", "miss")
		return nil, nil
	}
	if err != nil {
		metrics.IncCacheOperation("get", "error")
		return nil, apperr.Wrap(apperr.ErrCache, fmt.Sprintf("Cache error: %v", err), err)
	}

	value := new(T)
	if err := json.Unmarshal(data, value); err != nil {
		metrics.IncCacheOperation("get", "error")
		return nil, apperr.Wrap(apperr.ErrInternal, "Failed to deserialize cached value", err)
	}

	if c.local != nil {
		c.local.set(key.String(), data)
	}
	metrics.IncCacheOperation("get", "hit")
	return value, nil
}

// SetInBackground serializes the value and hands it to the writer. It
// returns immediately and never surfaces errors: marshal failures are
// logged and dropped, write failures are the writer's problem. There is no
// read-your-writes guarantee.
func (c *Cache) SetInBackground(key Key, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str(log.FieldCacheKey, key.String()).
			Msg("cache marshal failed, write dropped")
		return
	}
	c.writer.enqueue(writeOp{key: key.String(), data: data, ttl: ttl})
}

// Delete removes a key from both tiers. Used by operational tooling and
// tests; the request path never deletes.
func (c *Cache) Delete(ctx context.Context, key Key) error {
	if c.local != nil {
		c.local.delete(key.String())
	}
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := c.rdb.Del(opCtx, key.String()).Err(); err != nil {
		return apperr.Wrap(apperr.ErrCache, fmt.Sprintf("Cache error: %v", err), err)
	}
	return nil
}

// Ping reports whether Redis answers.
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Shutdown stops accepting background writes and drains everything queued
// before the call. Returns ctx.Err() if the drain outruns the deadline.
// Idempotent.
func (c *Cache) Shutdown(ctx context.Context) error {
	return c.writer.shutdown(ctx)
}

// Close releases the connection and the local tier. Call Shutdown first if
// queued writes matter.
func (c *Cache) Close() error {
	if c.local != nil {
		c.local.close()
	}
	return c.rdb.Close()
}
