// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable time source shared by the store tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()

	require.NoError(t, s.Put("users", json.RawMessage(`["a","b"]`), "c1", true))

	e, ok := s.Get("users")
	require.True(t, ok)
	assert.Equal(t, "users", e.Key)
	assert.JSONEq(t, `["a","b"]`, string(e.Items))
	assert.Equal(t, "c1", e.NextCursor)
	assert.True(t, e.HasMore)

	_, ok = s.Get("missing")
	assert.False(t, ok)

	assert.ErrorIs(t, s.Put("", nil, "", false), ErrEmptyKey)
}

func TestMemoryStorePutCopiesItems(t *testing.T) {
	s := NewMemoryStore()
	buf := []byte(`["a"]`)
	require.NoError(t, s.Put("k", buf, "", false))
	buf[2] = 'z'

	e, ok := s.Get("k")
	require.True(t, ok)
	assert.JSONEq(t, `["a"]`, string(e.Items))
}

func TestMemoryStoreTTLBoundary(t *testing.T) {
	clock := newFakeClock()
	ttl := 5 * time.Minute
	s := NewMemoryStore(WithTTL(ttl), WithClock(clock.Now))

	require.NoError(t, s.Put("users", json.RawMessage(`[]`), "", false))

	clock.Advance(ttl - time.Millisecond)
	_, ok := s.Get("users")
	assert.True(t, ok, "fresh just before ttl")

	clock.Advance(time.Millisecond)
	_, ok = s.Get("users")
	assert.False(t, ok, "stale exactly at ttl")

	clock.Advance(time.Millisecond)
	_, ok = s.Get("users")
	assert.False(t, ok, "stale after ttl")

	// Reads never delete.
	assert.Equal(t, 1, s.Len())

	_, ok = s.GetWithin("users", time.Hour)
	assert.True(t, ok, "a longer ttl still sees the entry")
}

func TestMemoryStoreOverwriteRestamps(t *testing.T) {
	clock := newFakeClock()
	s := NewMemoryStore(WithTTL(time.Minute), WithClock(clock.Now))

	require.NoError(t, s.Put("k", json.RawMessage(`[1]`), "", true))
	clock.Advance(50 * time.Second)
	require.NoError(t, s.Put("k", json.RawMessage(`[1,2]`), "", false))
	clock.Advance(50 * time.Second)

	e, ok := s.Get("k")
	require.True(t, ok)
	assert.JSONEq(t, `[1,2]`, string(e.Items))
	assert.False(t, e.HasMore)
}

func TestMemoryStoreDeleteClear(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Put("a", json.RawMessage(`[]`), "", false))
	require.NoError(t, s.Put("b", json.RawMessage(`[]`), "", false))

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Delete("a"))
	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Clear())
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStorePurgeAndStats(t *testing.T) {
	clock := newFakeClock()
	s := NewMemoryStore(WithTTL(time.Minute), WithClock(clock.Now))

	require.NoError(t, s.Put("old", json.RawMessage(`[]`), "", false))
	clock.Advance(2 * time.Minute)
	require.NoError(t, s.Put("new", json.RawMessage(`[]`), "", false))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, Stats{Backend: BackendMemory, Entries: 2, Stale: 1}, st)

	n, err := s.Purge(time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, s.Len())
}

func TestClearAll(t *testing.T) {
	a := NewMemoryStore()
	b := NewMemoryStore()
	require.NoError(t, a.Put("users", json.RawMessage(`[]`), "", false))
	require.NoError(t, b.Put("pancards", json.RawMessage(`[]`), "", false))

	require.NoError(t, ClearAll(a, nil, b))
	assert.Zero(t, a.Len())
	assert.Zero(t, b.Len())

	assert.NoError(t, ClearAll())
}
