// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scroll

import "sync"

const (
	DefaultRootMargin = 3
	DefaultThreshold  = 0.1
)

// Viewport is a Watcher for a scrolling list of rows. The caller reports the
// visible window and where the sentinel row sits with Update, and watchers are
// told when the sentinel comes into view. The window is grown by RootMargin
// rows on both ends so loading starts a little before the end is reached.
type Viewport struct {
	mu         sync.Mutex
	rootMargin int
	threshold  float64

	watchers map[uint64]func()
	next     uint64

	intersecting bool
	lastRow      int
}

var _ Watcher = (*Viewport)(nil)

type ViewportOption func(*Viewport)

func WithRootMargin(rows int) ViewportOption {
	return func(v *Viewport) {
		if rows >= 0 {
			v.rootMargin = rows
		}
	}
}

// WithThreshold sets the fraction of the sentinel that must be inside the
// window. Values outside (0, 1] are ignored.
func WithThreshold(threshold float64) ViewportOption {
	return func(v *Viewport) {
		if threshold > 0 && threshold <= 1 {
			v.threshold = threshold
		}
	}
}

func NewViewport(opts ...ViewportOption) *Viewport {
	v := &Viewport{
		rootMargin: DefaultRootMargin,
		threshold:  DefaultThreshold,
		watchers:   make(map[uint64]func()),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Viewport) Watch(onVisible func()) func() {
	v.mu.Lock()
	defer v.mu.Unlock()

	id := v.next
	v.next++
	v.watchers[id] = onVisible

	return func() {
		v.mu.Lock()
		delete(v.watchers, id)
		v.mu.Unlock()
	}
}

// Update records the window [top, top+height) and the sentinel rows
// [sentinelRow, sentinelRow+sentinelHeight). Watchers run, on the calling
// goroutine, when the sentinel starts intersecting or moves while it
// intersects. It reports whether they ran.
func (v *Viewport) Update(top, height, sentinelRow, sentinelHeight int) bool {
	ratio := IntersectionRatio(top-v.margin(), height+2*v.margin(), sentinelRow, sentinelHeight)

	v.mu.Lock()
	now := ratio > 0 && ratio >= v.threshold
	fire := now && (!v.intersecting || sentinelRow != v.lastRow)
	v.intersecting = now
	v.lastRow = sentinelRow

	var fns []func()
	if fire {
		fns = make([]func(), 0, len(v.watchers))
		for _, fn := range v.watchers {
			fns = append(fns, fn)
		}
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return fire
}

func (v *Viewport) margin() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rootMargin
}

// IntersectionRatio returns the fraction of the target rows that fall inside
// the window. A target with no height counts as one row.
func IntersectionRatio(windowTop, windowHeight, targetRow, targetHeight int) float64 {
	if targetHeight <= 0 {
		targetHeight = 1
	}
	if windowHeight <= 0 {
		return 0
	}

	lo := max(windowTop, targetRow)
	hi := min(windowTop+windowHeight, targetRow+targetHeight)
	if hi <= lo {
		return 0
	}
	return float64(hi-lo) / float64(targetHeight)
}
