// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/occamtv/occam/internal/log"
	"github.com/occamtv/occam/internal/metrics"
)

type writeOp struct {
	key  string
	data []byte
	ttl  time.Duration
}

// writer is the single consumer behind SetInBackground. Requests enqueue,
// one goroutine flushes in order. A full queue drops the write rather than
// blocking a request; shutdown drains whatever was accepted first.
type writer struct {
	rdb      *redis.Client
	queue    chan writeOp
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	logger   zerolog.Logger
}

func newWriter(rdb *redis.Client, queueSize int, logger zerolog.Logger) *writer {
	return &writer{
		rdb:    rdb,
		queue:  make(chan writeOp, queueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		logger: logger,
	}
}

func (w *writer) enqueue(op writeOp) {
	select {
	case <-w.stop:
		w.logger.Debug().
			Str(log.FieldCacheKey, op.key).
			Msg("cache write after shutdown discarded")
	case w.queue <- op:
		metrics.SetCacheQueueDepth(len(w.queue))
	default:
		metrics.IncCacheWriteDropped()
		w.logger.Warn().
			Str(log.FieldCacheKey, op.key).
			Msg("cache write queue full, write dropped")
	}
}

func (w *writer) run() {
	defer close(w.done)
	for {
		select {
		case op := <-w.queue:
			w.flush(op)
		case <-w.stop:
			// Drain everything accepted before the stop signal, then exit.
			for {
				select {
				case op := <-w.queue:
					w.flush(op)
				default:
					return
				}
			}
		}
	}
}

func (w *writer) flush(op writeOp) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := w.rdb.Set(ctx, op.key, op.data, op.ttl).Err(); err != nil {
		metrics.IncCacheOperation("set", "error")
		w.logger.Error().
			Err(err).
			Str(log.FieldCacheKey, op.key).
			Msg("cache write failed")
		return
	}
	metrics.IncCacheOperation("set", "ok")
	metrics.SetCacheQueueDepth(len(w.queue))
}

func (w *writer) shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.stop) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
