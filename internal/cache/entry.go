// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached result set. Items holds the JSON encoded sequence of
// items in fetch order. An Entry is never modified after it is written; Put
// replaces it wholesale.
type Entry struct {
	Key        string          `json:"key"`
	Items      json.RawMessage `json:"items"`
	Timestamp  time.Time       `json:"timestamp"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

// Age returns how old the entry is at now.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.Timestamp)
}

// IsFresh reports whether the entry is younger than ttl at now.
func (e *Entry) IsFresh(now time.Time, ttl time.Duration) bool {
	return e.Age(now) < ttl
}

// newEntry stamps a copy of items so later writes by the caller into its own
// buffer can't leak into the store.
func newEntry(key string, items json.RawMessage, nextCursor string, hasMore bool, now time.Time) *Entry {
	return &Entry{
		Key:        key,
		Items:      append(json.RawMessage(nil), items...),
		Timestamp:  now,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}
}
