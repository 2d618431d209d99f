// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scroll

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/panctlgo/internal/cache"
)

// pages serves canned pages keyed by cursor and counts calls.
type pages struct {
	mu      sync.Mutex
	byCur   map[string]Page[string]
	errs    map[string]error
	cursors []string
	calls   atomic.Int32
}

func newPages() *pages {
	return &pages{byCur: map[string]Page[string]{}, errs: map[string]error{}}
}

func (f *pages) on(cursor string, next string, hasMore bool, items ...string) *pages {
	f.byCur[cursor] = Page[string]{Items: items, NextCursor: next, HasMore: hasMore}
	return f
}

func (f *pages) fail(cursor string, err error) *pages {
	f.errs[cursor] = err
	return f
}

func (f *pages) fetch(_ context.Context, cursor string) (Page[string], error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors = append(f.cursors, cursor)
	if err, ok := f.errs[cursor]; ok {
		return Page[string]{}, err
	}
	return f.byCur[cursor], nil
}

// gate blocks a fetch until released so tests can act while it is in flight.
type gate struct {
	entered chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gate) wrap(fn FetchFunc[string]) FetchFunc[string] {
	return func(ctx context.Context, cursor string) (Page[string], error) {
		g.entered <- struct{}{}
		<-g.release
		return fn(ctx, cursor)
	}
}

func (g *gate) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never started")
	}
}

func TestInitialLoad(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newPages().on("", "c1", true, "a", "b")
	p := New(store, "users", f.fetch)

	p.Start(context.Background())

	st := p.State()
	assert.Equal(t, []string{"a", "b"}, st.Items)
	assert.True(t, st.HasMore)
	assert.False(t, st.IsLoading)
	assert.Empty(t, st.Error)
	assert.Equal(t, Idle, st.Phase)
	assert.Equal(t, int32(1), f.calls.Load())

	e, ok := store.Get("users")
	require.True(t, ok)
	assert.JSONEq(t, `["a","b"]`, string(e.Items))
	assert.Equal(t, "c1", e.NextCursor)
	assert.True(t, e.HasMore)
}

func TestStartAdoptsFreshEntry(t *testing.T) {
	store := cache.NewMemoryStore()
	require.NoError(t, store.Put("users", json.RawMessage(`["x","y"]`), "c9", true))

	f := newPages()
	p := New(store, "users", f.fetch)
	p.Start(context.Background())

	st := p.State()
	assert.Equal(t, []string{"x", "y"}, st.Items)
	assert.True(t, st.HasMore)
	assert.Zero(t, f.calls.Load(), "adoption makes no network call")

	f.on("c9", "", false, "z")
	assert.True(t, p.LoadMore(context.Background()))
	assert.Equal(t, []string{"x", "y", "z"}, p.State().Items)
	assert.Equal(t, []string{"c9"}, f.cursors)
}

func TestStartIgnoresStaleEntry(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := cache.NewMemoryStore(cache.WithClock(clock))
	require.NoError(t, store.Put("users", json.RawMessage(`["old"]`), "", false))
	now = now.Add(time.Minute)

	f := newPages().on("", "", false, "new")
	p := New(store, "users", f.fetch, WithTTL(time.Minute))
	p.Start(context.Background())

	assert.Equal(t, []string{"new"}, p.State().Items)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestStartDisabled(t *testing.T) {
	f := newPages().on("", "", false, "a")
	p := New(cache.NewMemoryStore(), "users", f.fetch, WithEnabled(false))

	p.Start(context.Background())
	assert.Zero(t, f.calls.Load())
	assert.Empty(t, p.State().Items)

	p.SetEnabled(context.Background(), true)
	assert.Equal(t, []string{"a"}, p.State().Items)
	assert.Equal(t, int32(1), f.calls.Load())

	p.SetEnabled(context.Background(), true)
	assert.Equal(t, int32(1), f.calls.Load(), "already enabled")
}

func TestLoadMoreAppendsInOrder(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newPages().
		on("", "c1", true, "a", "b").
		on("c1", "", false, "c", "d")
	p := New(store, "users", f.fetch)

	p.Start(context.Background())
	before := p.State().Items

	assert.True(t, p.LoadMore(context.Background()))

	st := p.State()
	assert.Equal(t, []string{"a", "b", "c", "d"}, st.Items)
	assert.False(t, st.HasMore)
	assert.Equal(t, []string{"a", "b"}, before, "earlier snapshots are untouched")

	e, ok := store.Get("users")
	require.True(t, ok)
	assert.JSONEq(t, `["a","b","c","d"]`, string(e.Items))
	assert.False(t, e.HasMore)
	assert.Empty(t, e.NextCursor)
}

func TestLoadMoreWithoutMore(t *testing.T) {
	f := newPages().on("", "", false, "a")
	p := New(cache.NewMemoryStore(), "users", f.fetch)
	p.Start(context.Background())

	assert.False(t, p.LoadMore(context.Background()))
	assert.False(t, p.CanLoadMore())
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestStuckCursorEndsPaging(t *testing.T) {
	tests := []struct {
		name  string
		feed  *pages
		items []string
	}{
		{
			name:  "repeated cursor",
			feed:  newPages().on("", "c1", true, "a").on("c1", "c1", true, "b"),
			items: []string{"a", "b"},
		},
		{
			name:  "missing cursor",
			feed:  newPages().on("", "", true, "a"),
			items: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := cache.NewMemoryStore()
			p := New(store, "users", tt.feed.fetch)

			items, err := Drain(context.Background(), p, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.items, items)
			assert.Equal(t, int32(len(tt.items)), tt.feed.calls.Load())
			assert.False(t, p.CanLoadMore())

			e, ok := store.Get("users")
			require.True(t, ok)
			assert.False(t, e.HasMore)
		})
	}
}

func TestLoadMoreSingleFlight(t *testing.T) {
	f := newPages().
		on("", "c1", true, "a").
		on("c1", "c2", true, "b")
	g := newGate()
	p := New(cache.NewMemoryStore(), "users", g.wrap(f.fetch))

	started := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(started)
	}()
	g.waitEntered(t)
	g.release <- struct{}{}
	<-started

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.LoadMore(context.Background())
	}()
	g.waitEntered(t)

	st := p.State()
	assert.True(t, st.IsLoadingMore)
	assert.False(t, st.IsLoading)
	assert.False(t, p.CanLoadMore())
	assert.False(t, p.LoadMore(context.Background()), "second call is ignored")

	close(g.release)
	wg.Wait()

	assert.Equal(t, []string{"a", "b"}, p.State().Items)
	assert.Equal(t, []string{"", "c1"}, f.cursors)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestFetchFailure(t *testing.T) {
	f := newPages().
		on("", "c1", true, "a").
		fail("c1", errors.New("Network error"))
	p := New(cache.NewMemoryStore(), "users", f.fetch)
	p.Start(context.Background())

	assert.True(t, p.LoadMore(context.Background()))

	st := p.State()
	assert.Equal(t, "Network error", st.Error)
	assert.ErrorIs(t, st.Err, ErrFetchFailed)
	assert.Equal(t, []string{"a"}, st.Items)
	assert.True(t, st.HasMore)
	assert.Equal(t, Idle, st.Phase)

	// The cursor survived, so a retry asks for the same page.
	delete(f.errs, "c1")
	f.on("c1", "", false, "b")
	p.LoadMore(context.Background())
	st = p.State()
	assert.Equal(t, []string{"a", "b"}, st.Items)
	assert.Empty(t, st.Error)
	assert.NoError(t, st.Err)
}

func TestFetchFailureFallbackMessage(t *testing.T) {
	f := newPages().fail("", errors.New(""))
	p := New(cache.NewMemoryStore(), "users", f.fetch)
	p.Start(context.Background())
	assert.Equal(t, FallbackMessage, p.State().Error)
}

func TestFetchPanicReturnsToIdle(t *testing.T) {
	p := New(cache.NewMemoryStore(), "users", func(context.Context, string) (Page[string], error) {
		panic("boom")
	})
	p.Start(context.Background())

	st := p.State()
	assert.Equal(t, Idle, st.Phase)
	assert.Contains(t, st.Error, "boom")
}

func TestRefresh(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newPages().
		on("", "c1", true, "a").
		on("c1", "", false, "b")
	p := New(store, "users", f.fetch)
	p.Start(context.Background())
	p.LoadMore(context.Background())

	p.Refresh(context.Background())
	first := p.State()
	p.Refresh(context.Background())
	second := p.State()

	assert.Equal(t, []string{"a"}, first.Items)
	assert.Equal(t, first.Items, second.Items)
	assert.Equal(t, first.HasMore, second.HasMore)
	assert.Equal(t, []string{"", "c1", "", ""}, f.cursors, "refresh bypasses the cache")

	e, ok := store.Get("users")
	require.True(t, ok)
	assert.JSONEq(t, `["a"]`, string(e.Items))
}

func TestRefreshWhileBusyDiscardsInFlight(t *testing.T) {
	f := newPages().on("", "c1", true, "a")
	g := newGate()
	p := New(cache.NewMemoryStore(), "users", g.wrap(f.fetch))

	done := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(done)
	}()
	g.waitEntered(t)

	p.Refresh(context.Background())
	assert.True(t, p.State().IsLoading)

	close(g.release)
	<-done

	assert.Equal(t, []string{"a"}, p.State().Items)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestResetCache(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newPages().on("", "", false, "a", "b")
	p := New(store, "users", f.fetch)
	p.Start(context.Background())

	p.ResetCache()

	st := p.State()
	assert.Empty(t, st.Items)
	assert.True(t, st.HasMore)
	assert.Empty(t, st.Error)
	_, ok := store.Get("users")
	assert.False(t, ok)
	assert.Equal(t, int32(1), f.calls.Load(), "no fetch")

	// The cursor is gone, so the next page is the first one again.
	f.on("", "", false, "c")
	p.LoadMore(context.Background())
	assert.Equal(t, []string{"c"}, p.State().Items)
	assert.Equal(t, []string{"", ""}, f.cursors)
}

func TestSetKey(t *testing.T) {
	store := cache.NewMemoryStore()
	require.NoError(t, store.Put("users?role=admin", json.RawMessage(`["cached"]`), "", false))

	all := newPages().on("", "", false, "a")
	p := New(store, "users", all.fetch)
	p.Start(context.Background())

	admins := newPages()
	p.SetKey(context.Background(), "users?role=admin", admins.fetch)

	st := p.State()
	assert.Equal(t, "users?role=admin", st.Key)
	assert.Equal(t, []string{"cached"}, st.Items)
	assert.Zero(t, admins.calls.Load())

	_, ok := store.Get("users")
	assert.True(t, ok, "previous key stays cached")

	p.SetKey(context.Background(), "users?role=admin", nil)
	assert.Zero(t, admins.calls.Load(), "same key is a no-op")
}

func TestSetKeyWhileBusy(t *testing.T) {
	store := cache.NewMemoryStore()
	old := newPages().on("", "", false, "old")
	g := newGate()
	p := New(store, "a", g.wrap(old.fetch))

	done := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(done)
	}()
	g.waitEntered(t)

	fresh := newPages().on("", "", false, "new")
	p.SetKey(context.Background(), "b", fresh.fetch)
	assert.Empty(t, p.State().Items)

	close(g.release)
	<-done

	st := p.State()
	assert.Equal(t, "b", st.Key)
	assert.Equal(t, []string{"new"}, st.Items)

	_, ok := store.Get("a")
	assert.False(t, ok, "discarded result is not cached")
}

func TestSubscribeAndClose(t *testing.T) {
	f := newPages().on("", "c1", true, "a").on("c1", "", false, "b")
	p := New(cache.NewMemoryStore(), "users", f.fetch)

	var mu sync.Mutex
	var phases []Phase
	unsubscribe := p.Subscribe(func(st State[string]) {
		mu.Lock()
		phases = append(phases, st.Phase)
		mu.Unlock()
	})

	p.Start(context.Background())
	mu.Lock()
	assert.Equal(t, []Phase{FetchingInitial, Idle}, phases)
	mu.Unlock()

	unsubscribe()
	p.LoadMore(context.Background())
	mu.Lock()
	assert.Len(t, phases, 2)
	mu.Unlock()

	p.Close()
	p.Refresh(context.Background())
	assert.False(t, p.LoadMore(context.Background()))
	assert.Equal(t, []string{"a", "b"}, p.State().Items)
}

func TestCloseDropsLateResult(t *testing.T) {
	store := cache.NewMemoryStore()
	f := newPages().on("", "", false, "a")
	g := newGate()
	p := New(store, "users", g.wrap(f.fetch))

	done := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(done)
	}()
	g.waitEntered(t)
	p.Close()
	close(g.release)
	<-done

	assert.Empty(t, p.State().Items)
	assert.Equal(t, Idle, p.State().Phase)
	_, ok := store.Get("users")
	assert.False(t, ok)
}

func TestDrain(t *testing.T) {
	f := newPages().
		on("", "c1", true, "a", "b").
		on("c1", "c2", true, "c", "d").
		on("c2", "", false, "e")

	items, err := Drain(context.Background(), New(cache.NewMemoryStore(), "k", f.fetch), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, items)

	f.cursors = nil
	items, err = Drain(context.Background(), New(cache.NewMemoryStore(), "k", f.fetch), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, items)
	assert.Equal(t, []string{"", "c1"}, f.cursors)

	f.fail("c2", errors.New("Failed to fetch users"))
	items, err = Drain(context.Background(), New(cache.NewMemoryStore(), "k", f.fetch), 0)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.EqualError(t, err, "page fetch failed: Failed to fetch users")
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
}
