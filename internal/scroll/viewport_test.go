// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntersectionRatio(t *testing.T) {
	tests := []struct {
		name                   string
		top, height, row, rows int
		want                   float64
	}{
		{"inside", 0, 10, 5, 1, 1},
		{"above", 10, 10, 5, 1, 0},
		{"below", 0, 10, 10, 1, 0},
		{"last row", 0, 10, 9, 1, 1},
		{"half in", 0, 10, 8, 4, 0.5},
		{"zero height target", 0, 10, 3, 0, 1},
		{"empty window", 0, 0, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, IntersectionRatio(tt.top, tt.height, tt.row, tt.rows), 1e-9)
		})
	}
}

func TestViewportFires(t *testing.T) {
	v := NewViewport()
	fired := 0
	unwatch := v.Watch(func() { fired++ })

	// Sentinel at row 20, window rows 0..9, margin 3 reaches row 12.
	assert.False(t, v.Update(0, 10, 20, 1))
	assert.Zero(t, fired)

	// Window 8..17 plus margin reaches row 20.
	assert.True(t, v.Update(8, 10, 20, 1))
	assert.Equal(t, 1, fired)

	// Still intersecting at the same row: no repeat.
	assert.False(t, v.Update(9, 10, 20, 1))
	assert.Equal(t, 1, fired)

	// More rows arrived and the sentinel moved while still in view.
	assert.True(t, v.Update(9, 10, 21, 1))
	assert.Equal(t, 2, fired)

	// Leave and come back.
	assert.False(t, v.Update(0, 5, 21, 1))
	assert.True(t, v.Update(15, 5, 21, 1))
	assert.Equal(t, 3, fired)

	unwatch()
	v.Update(0, 1, 50, 1)
	assert.True(t, v.Update(50, 1, 50, 1))
	assert.Equal(t, 3, fired, "unwatched")
}

func TestViewportThreshold(t *testing.T) {
	v := NewViewport(WithRootMargin(0), WithThreshold(0.5))
	fired := 0
	v.Watch(func() { fired++ })

	// Only one of four sentinel rows is visible.
	assert.False(t, v.Update(0, 10, 9, 4))
	assert.True(t, v.Update(0, 11, 9, 4))
	assert.Equal(t, 1, fired)
}
