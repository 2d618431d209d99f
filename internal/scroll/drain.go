// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scroll

import "context"

// Drain starts p and keeps loading pages until limit items are held or the
// query is exhausted. A limit of zero or less means everything. The first
// failure ends the drain and is returned with whatever was loaded before it.
func Drain[T any](ctx context.Context, p *Pager[T], limit int) ([]T, error) {
	p.Start(ctx)

	for {
		st := p.State()
		if st.Err != nil {
			return truncate(st.Items, limit), st.Err
		}
		if limit > 0 && len(st.Items) >= limit {
			return truncate(st.Items, limit), nil
		}
		if !st.HasMore {
			return st.Items, nil
		}
		if err := ctx.Err(); err != nil {
			return st.Items, err
		}
		if !p.LoadMore(ctx) {
			return p.State().Items, nil
		}
	}
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
