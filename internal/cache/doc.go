// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache holds paginated result sets keyed by query so that a pager
// re-created for the same query can adopt what was already fetched instead of
// hitting the portal again. Entries go stale after a TTL, but staleness is only
// ever computed when an entry is read; nothing is evicted in the background.
package cache
