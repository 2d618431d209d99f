// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/apex/log"

	"github.com/staranto/panctlgo/internal/cache"
)

// FallbackMessage is reported when a fetch fails with an empty message.
const FallbackMessage = "Failed to fetch data"

// ErrFetchFailed wraps every fetch failure recorded in State.Err.
var ErrFetchFailed = errors.New("page fetch failed")

// Page is one response from a FetchFunc. An empty NextCursor means there is
// no cursor to continue from.
type Page[T any] struct {
	Items      []T
	NextCursor string
	HasMore    bool
}

// FetchFunc returns the page that starts at cursor. The empty cursor asks for
// the first page.
type FetchFunc[T any] func(ctx context.Context, cursor string) (Page[T], error)

// State is a snapshot of a Pager. Items is shared with the Pager and later
// snapshots and must not be modified.
type State[T any] struct {
	Key           string
	Items         []T
	IsLoading     bool
	IsLoadingMore bool
	Error         string
	Err           error
	HasMore       bool
	Phase         Phase
}

type fetchKind int

const (
	initialFetch fetchKind = iota
	moreFetch
)

// reload is work queued behind an in-flight fetch.
type reload int

const (
	reloadNone reload = iota
	reloadActivate
	reloadFetch
)

// Pager accumulates the pages of one query. See the package doc for the
// concurrency contract.
type Pager[T any] struct {
	mu    sync.Mutex
	store cache.Store
	opts  options

	key     string
	fetch   FetchFunc[T]
	enabled bool
	closed  bool

	items   []T
	cursor  string
	hasMore bool
	errMsg  string
	err     error
	phase   Phase

	// gen changes whenever the pager's query or content is reset, so a fetch
	// that started before the change can recognize its result as obsolete.
	gen     uint64
	pending reload

	subs    map[uint64]func(State[T])
	nextSub uint64
}

// New returns a Pager for key. Nothing is fetched until Start.
func New[T any](store cache.Store, key string, fetch FetchFunc[T], opts ...Option) *Pager[T] {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	o := newOptions(opts)
	return &Pager[T]{
		store:   store,
		opts:    o,
		key:     key,
		fetch:   fetch,
		enabled: o.enabled,
		hasMore: true,
		subs:    make(map[uint64]func(State[T])),
	}
}

// Start performs the initial load. A fresh cache entry is adopted without a
// fetch; otherwise the first page is fetched. It does nothing while disabled,
// closed or busy.
func (p *Pager[T]) Start(ctx context.Context) {
	p.activate(ctx)
}

// LoadMore fetches the page after the last cursor and appends it. It returns
// false without fetching when a fetch is already running or there is nothing
// more to load.
func (p *Pager[T]) LoadMore(ctx context.Context) bool {
	return p.run(ctx, moreFetch)
}

// CanLoadMore reports whether LoadMore would fetch right now.
func (p *Pager[T]) CanLoadMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && p.hasMore && !p.phase.Busy()
}

// Refresh drops the cache entry and everything loaded so far, then fetches
// the first page again without consulting the cache. When a fetch is running
// its result is discarded and the reload follows as soon as it returns.
func (p *Pager[T]) Refresh(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.resetLocked(true)
	if p.phase.Busy() {
		p.pending = reloadFetch
		p.mu.Unlock()
		p.notify()
		return
	}
	p.mu.Unlock()

	p.notify()
	p.run(ctx, initialFetch)
}

// ResetCache drops the cache entry and everything loaded so far without
// fetching anything.
func (p *Pager[T]) ResetCache() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.resetLocked(true)
	p.pending = reloadNone
	p.mu.Unlock()

	p.notify()
}

// SetKey switches the Pager to another query. A nil fetch keeps the current
// FetchFunc. The previous key's cache entry is left alone.
func (p *Pager[T]) SetKey(ctx context.Context, key string, fetch FetchFunc[T]) {
	p.mu.Lock()
	if p.closed || (key == p.key && fetch == nil) {
		p.mu.Unlock()
		return
	}

	p.opts.logger.WithFields(log.Fields{"from": p.key, "to": key}).Debug("pager key changed")

	p.key = key
	if fetch != nil {
		p.fetch = fetch
	}
	p.resetLocked(false)

	switch {
	case !p.enabled:
		p.pending = reloadNone
		p.mu.Unlock()
		p.notify()
		return
	case p.phase.Busy():
		p.pending = reloadActivate
		p.mu.Unlock()
		p.notify()
		return
	}
	p.mu.Unlock()

	p.notify()
	p.activate(ctx)
}

// SetEnabled turns the Pager on or off. Switching it on performs the initial
// load.
func (p *Pager[T]) SetEnabled(ctx context.Context, enabled bool) {
	p.mu.Lock()
	was := p.enabled
	p.enabled = enabled
	p.mu.Unlock()

	if enabled && !was {
		p.activate(ctx)
	}
}

// Key returns the current cache key.
func (p *Pager[T]) Key() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.key
}

// State returns a snapshot of the Pager.
func (p *Pager[T]) State() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Subscribe registers fn to receive every state change. fn runs on the
// goroutine that caused the change and must not block for long.
func (p *Pager[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// Close detaches the Pager. Results of a fetch still in flight are dropped
// and subscribers are no longer called.
func (p *Pager[T]) Close() {
	p.mu.Lock()
	p.closed = true
	p.pending = reloadNone
	clear(p.subs)
	p.mu.Unlock()
}

func (p *Pager[T]) activate(ctx context.Context) {
	p.mu.Lock()
	if p.closed || !p.enabled || p.phase.Busy() {
		p.mu.Unlock()
		return
	}
	adopted := p.adoptLocked()
	p.mu.Unlock()

	if adopted {
		p.notify()
		return
	}
	p.run(ctx, initialFetch)
}

// adoptLocked takes over a fresh cache entry for the current key.
func (p *Pager[T]) adoptLocked() bool {
	e, ok := p.store.GetWithin(p.key, p.opts.ttl)
	if !ok {
		return false
	}

	var items []T
	if len(e.Items) > 0 {
		if err := json.Unmarshal(e.Items, &items); err != nil {
			p.opts.logger.WithError(err).WithField("key", p.key).Warn("ignoring undecodable cache entry")
			return false
		}
	}

	p.items = items
	p.cursor = e.NextCursor
	p.hasMore = e.HasMore

	p.opts.logger.WithFields(log.Fields{"key": p.key, "items": len(items)}).Debug("adopted cache entry")
	return true
}

// run performs one fetch of the given kind and reports whether its result was
// applied.
func (p *Pager[T]) run(ctx context.Context, kind fetchKind) bool {
	p.mu.Lock()
	if p.closed || (kind == moreFetch && !p.hasMore) {
		p.mu.Unlock()
		return false
	}

	ev := StartInitial
	if kind == moreFetch {
		ev = StartMore
	}
	next, err := p.phase.Next(ev)
	if err != nil {
		p.mu.Unlock()
		return false
	}

	p.phase = next
	gen := p.gen
	key := p.key
	fetch := p.fetch
	cursor := ""
	if kind == moreFetch {
		cursor = p.cursor
	}
	p.mu.Unlock()
	p.notify()

	p.opts.logger.WithFields(log.Fields{"key": key, "cursor": cursor, "phase": next}).Debug("fetching page")

	page, ferr := p.call(ctx, fetch, cursor)

	p.mu.Lock()
	done := Succeeded
	if ferr != nil {
		done = Failed
	}
	p.phase, _ = p.phase.Next(done)

	applied := !p.closed && gen == p.gen
	if applied {
		if ferr != nil {
			p.errMsg = message(ferr)
			p.err = fmt.Errorf("%w: %w", ErrFetchFailed, ferr)
			p.opts.logger.WithError(ferr).WithField("key", key).Warn("page fetch failed")
		} else {
			if kind == moreFetch {
				p.items = append(slices.Clip(p.items), page.Items...)
			} else {
				p.items = slices.Clone(page.Items)
			}
			p.cursor = page.NextCursor
			p.hasMore = page.HasMore
			if p.hasMore && (page.NextCursor == "" || page.NextCursor == cursor) {
				// A cursor that does not move would fetch the same page forever.
				p.hasMore = false
				p.opts.logger.WithFields(log.Fields{"key": key, "cursor": page.NextCursor}).
					Warn("cursor did not advance, ending pagination")
			}
			p.errMsg = ""
			p.err = nil
			p.writeLocked()
		}
	}

	pending := p.pending
	p.pending = reloadNone
	p.mu.Unlock()
	p.notify()

	switch pending {
	case reloadActivate:
		p.activate(ctx)
	case reloadFetch:
		p.run(ctx, initialFetch)
	}
	return applied
}

// call runs fetch and turns a panic into a failure so the phase always
// returns to Idle.
func (p *Pager[T]) call(ctx context.Context, fetch FetchFunc[T], cursor string) (page Page[T], err error) {
	if fetch == nil {
		return page, errors.New("no fetch function")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fetch panicked: %v", r)
		}
	}()
	return fetch(ctx, cursor)
}

// writeLocked stores the accumulated sequence under the current key. A store
// failure is logged; the in-memory state stays authoritative.
func (p *Pager[T]) writeLocked() {
	items := p.items
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		p.opts.logger.WithError(err).WithField("key", p.key).Warn("failed to encode items for cache")
		return
	}
	if err := p.store.Put(p.key, b, p.cursor, p.hasMore); err != nil {
		p.opts.logger.WithError(err).WithField("key", p.key).Warn("failed to write cache entry")
	}
}

// resetLocked returns to the empty state. With drop the cache entry for the
// current key is deleted as well.
func (p *Pager[T]) resetLocked(drop bool) {
	if drop {
		if err := p.store.Delete(p.key); err != nil {
			p.opts.logger.WithError(err).WithField("key", p.key).Warn("failed to delete cache entry")
		}
	}
	p.items = nil
	p.cursor = ""
	p.hasMore = true
	p.errMsg = ""
	p.err = nil
	p.gen++
}

func (p *Pager[T]) snapshotLocked() State[T] {
	return State[T]{
		Key:           p.key,
		Items:         p.items,
		IsLoading:     p.phase == FetchingInitial,
		IsLoadingMore: p.phase == FetchingMore,
		Error:         p.errMsg,
		Err:           p.err,
		HasMore:       p.hasMore,
		Phase:         p.phase,
	}
}

func (p *Pager[T]) notify() {
	p.mu.Lock()
	if p.closed || len(p.subs) == 0 {
		p.mu.Unlock()
		return
	}
	st := p.snapshotLocked()
	fns := make([]func(State[T]), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func message(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return FallbackMessage
}
