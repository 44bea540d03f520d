// SPDX-License-Identifier: MIT

package cache

import (
	"sync"
	"time"
)

// localEntry is a remote read result with its expiry.
type localEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e localEntry) expired() bool {
	return time.Now().After(e.expiresAt)
}

// localStore is the process-local read tier. It only ever holds bytes that
// came back from Redis, never pending writes, so it cannot hand out a value
// the remote store has not confirmed. A janitor sweeps expired entries.
type localStore struct {
	mu       sync.RWMutex
	entries  map[string]localEntry
	ttl      time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

func newLocalStore(ttl, cleanupInterval time.Duration) *localStore {
	s := &localStore{
		entries: make(map[string]localEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go s.janitor(cleanupInterval)
	return s
}

func (s *localStore) get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, found := s.entries[key]
	if !found || e.expired() {
		return nil, false
	}
	return e.data, true
}

func (s *localStore) set(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = localEntry{data: data, expiresAt: time.Now().Add(s.ttl)}
}

func (s *localStore) delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

func (s *localStore) deleteExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key, e := range s.entries {
		if e.expired() {
			delete(s.entries, key)
			count++
		}
	}
	return count
}

func (s *localStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.deleteExpired()
		case <-s.stop:
			return
		}
	}
}

func (s *localStore) close() {
	s.stopOnce.Do(func() { close(s.stop) })
}
