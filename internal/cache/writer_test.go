// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/goleak"
)

func TestShutdownDrainsAcceptedWrites(t *testing.T) {
	mr, c := newTestCache(t, Config{QueueSize: 256})

	const n = 50
	for i := 0; i < n; i++ {
		c.SetInBackground(Key(fmt.Sprintf("drain:%d", i)), i, time.Minute)
	}
	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	for i := 0; i < n; i++ {
		key := fmt.Sprintf("drain:%d", i)
		if !mr.Exists(key) {
			t.Fatalf("write %s accepted before shutdown was not flushed", key)
		}
	}
}

func TestShutdownIdempotent(t *testing.T) {
	_, c := newTestCache(t, Config{})

	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("first Shutdown: %v", err)
	}
	if err := c.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown: %v", err)
	}
}

func TestFullQueueDropsInsteadOfBlocking(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	// No consumer running yet: a capacity-1 queue accepts one op and must
	// drop the rest without blocking the caller.
	w := newWriter(client, 1, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.enqueue(writeOp{key: "keep", data: []byte(`1`), ttl: time.Minute})
		w.enqueue(writeOp{key: "dropped-1", data: []byte(`2`), ttl: time.Minute})
		w.enqueue(writeOp{key: "dropped-2", data: []byte(`3`), ttl: time.Minute})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}

	go w.run()
	if err := w.shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if !mr.Exists("keep") {
		t.Error("accepted write was not flushed")
	}
	if mr.Exists("dropped-1") || mr.Exists("dropped-2") {
		t.Error("overflow writes should have been dropped")
	}
}

func TestWriterShutdownStopsGoroutine(t *testing.T) {
	ignore := goleak.IgnoreCurrent()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	w := newWriter(client, 8, zerolog.Nop())
	go w.run()
	w.enqueue(writeOp{key: "k", data: []byte(`"v"`), ttl: time.Minute})

	if err := w.shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("client close: %v", err)
	}
	mr.Close()

	goleak.VerifyNone(t, ignore)
}
