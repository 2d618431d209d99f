// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is the process-wide default Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	opts    options
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		opts:    newOptions(opts),
	}
}

func (s *MemoryStore) Get(key string) (*Entry, bool) {
	return s.GetWithin(key, s.opts.ttl)
}

func (s *MemoryStore) GetWithin(key string, ttl time.Duration) (*Entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || !e.IsFresh(s.opts.now(), ttl) {
		return nil, false
	}

	c := *e
	return &c, true
}

func (s *MemoryStore) Put(key string, items json.RawMessage, nextCursor string, hasMore bool) error {
	if key == "" {
		return ErrEmptyKey
	}

	e := newEntry(key, items, nextCursor, hasMore, s.opts.now())

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.entries = make(map[string]*Entry)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, fresh or not.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Purge drops entries older than olderThan and returns how many went.
func (s *MemoryStore) Purge(olderThan time.Duration) (int, error) {
	now := s.opts.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, e := range s.entries {
		if !e.IsFresh(now, olderThan) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Stats() (Stats, error) {
	now := s.opts.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Backend: BackendMemory, Entries: len(s.entries)}
	for _, e := range s.entries {
		if !e.IsFresh(now, s.opts.ttl) {
			st.Stale++
		}
	}
	return st, nil
}
