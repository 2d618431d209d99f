// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package tui is the interactive users browser. It renders the items of a
// scroll.Pager and feeds its scroll position to a scroll.Viewport, so the
// next page is requested as the end of the list comes into view.
package tui
