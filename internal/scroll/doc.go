// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package scroll is the infinite scroll engine. A Pager accumulates the
// pages of one cursor-paginated query, consulting and refreshing a
// cache.Store on the way. A Trigger asks the Pager for the next page whenever
// a Watcher (usually a Viewport) reports that the end of the list is in view.
//
// Pager operations block for the duration of the fetch they start and are
// meant to be called from their own goroutine. At most one fetch per Pager
// is ever in flight; overlapping calls are ignored.
package scroll
