// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is how long an entry stays fresh unless a store or pager is
// configured otherwise.
const DefaultTTL = 5 * time.Minute

var (
	ErrEmptyKey       = errors.New("cache key cannot be empty")
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Store maps cache keys to entries. Implementations must be safe for
// concurrent use. Reads never delete; a stale entry is simply reported as
// absent and stays stored until it is overwritten, deleted or cleared.
type Store interface {
	// Get returns the entry for key if it is fresh under the store's TTL.
	Get(key string) (*Entry, bool)
	// GetWithin is Get against an explicit TTL.
	GetWithin(key string, ttl time.Duration) (*Entry, bool)
	// Put overwrites the entry for key, stamped with the current time.
	Put(key string, items json.RawMessage, nextCursor string, hasMore bool) error
	Delete(key string) error
	Clear() error
}

// ClearAll empties every given store, skipping nil ones. It is the single
// entry point logout goes through.
func ClearAll(stores ...Store) error {
	var errs []error
	for _, s := range stores {
		if s == nil {
			continue
		}
		if err := s.Clear(); err != nil {
			errs = append(errs, fmt.Errorf("failed to clear cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Purger is implemented by stores that can sweep stale entries on request.
type Purger interface {
	Purge(olderThan time.Duration) (int, error)
}

// Stats summarizes a store's content.
type Stats struct {
	Backend string `json:"backend"`
	Entries int    `json:"entries"`
	Stale   int    `json:"stale"`
}

// Statter is implemented by stores that can report Stats.
type Statter interface {
	Stats() (Stats, error)
}

// Option configures a store.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL overrides DefaultTTL for Get. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, mostly so tests can pin the TTL boundary.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func newOptions(opts []Option) options {
	o := options{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
