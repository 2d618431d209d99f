// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scroll

import (
	"context"
	"sync"
)

// Watcher reports when something, typically the row after the last item,
// comes into view. The returned func stops the notifications.
type Watcher interface {
	Watch(onVisible func()) (unwatch func())
}

// Loader is the part of a Pager a Trigger drives.
type Loader interface {
	CanLoadMore() bool
	LoadMore(ctx context.Context) bool
}

var _ Loader = (*Pager[int])(nil)

// TriggerOption configures a Trigger.
type TriggerOption func(*Trigger)

// WithDispatch sets how a load is run once the watcher fires. The default
// runs it on the watcher's goroutine; interactive callers usually pass
// something like func(f func()) { go f() }.
func WithDispatch(dispatch func(func())) TriggerOption {
	return func(t *Trigger) {
		if dispatch != nil {
			t.dispatch = dispatch
		}
	}
}

// Trigger calls LoadMore on its Loader whenever the observed Watcher fires
// and the Loader has more to load and is not already loading.
type Trigger struct {
	mu       sync.Mutex
	ctx      context.Context
	loader   Loader
	dispatch func(func())
	unwatch  func()
	watchID  uint64
	closed   bool
}

func NewTrigger(ctx context.Context, loader Loader, opts ...TriggerOption) *Trigger {
	t := &Trigger{
		ctx:      ctx,
		loader:   loader,
		dispatch: func(f func()) { f() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Observe replaces the watched Watcher. The previous watch is torn down
// first. A nil Watcher just stops observing.
func (t *Trigger) Observe(w Watcher) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	prev := t.unwatch
	t.unwatch = nil
	t.watchID++
	id := t.watchID
	t.mu.Unlock()

	if prev != nil {
		prev()
	}
	if w == nil {
		return
	}

	unwatch := w.Watch(func() { t.fire(id) })

	t.mu.Lock()
	if t.closed || t.watchID != id {
		t.mu.Unlock()
		unwatch()
		return
	}
	t.unwatch = unwatch
	t.mu.Unlock()
}

// Close stops observing. Notifications arriving afterwards are ignored.
func (t *Trigger) Close() {
	t.mu.Lock()
	t.closed = true
	prev := t.unwatch
	t.unwatch = nil
	t.mu.Unlock()

	if prev != nil {
		prev()
	}
}

func (t *Trigger) fire(id uint64) {
	t.mu.Lock()
	live := !t.closed && t.watchID == id
	t.mu.Unlock()

	if !live || !t.loader.CanLoadMore() {
		return
	}
	t.dispatch(func() {
		t.loader.LoadMore(t.ctx)
	})
}
