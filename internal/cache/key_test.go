// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	empty := ""
	role := "admin"
	limit := 10
	var nilLimit *int

	tests := []struct {
		name   string
		base   string
		params Params
		want   string
	}{
		{
			name: "nil params",
			base: "users",
			want: "users",
		},
		{
			name:   "all params unset",
			base:   "users",
			params: Params{"search": "", "role": nil},
			want:   "users",
		},
		{
			name:   "sorted by name",
			base:   "users",
			params: Params{"sort": "newest", "role": "admin", "search": "bob"},
			want:   "users?role=admin&search=bob&sort=newest",
		},
		{
			name:   "empty and nil dropped",
			base:   "users",
			params: Params{"b": "x", "a": "", "c": nil},
			want:   "users?b=x",
		},
		{
			name:   "numbers rendered",
			base:   "users",
			params: Params{"limit": 10, "ratio": 0.5},
			want:   "users?limit=10&ratio=0.5",
		},
		{
			name:   "pointers",
			base:   "users",
			params: Params{"role": &role, "search": &empty, "limit": &limit, "page": nilLimit},
			want:   "users?limit=10&role=admin",
		},
		{
			name:   "byte order not locale order",
			base:   "x",
			params: Params{"b": "1", "B": "2", "a": "3"},
			want:   "x?B=2&a=3&b=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateKey(tt.base, tt.params))
		})
	}
}

func TestGenerateKeyOrderIndependent(t *testing.T) {
	a := Params{}
	a["search"] = "bob"
	a["role"] = "admin"

	b := Params{}
	b["role"] = "admin"
	b["search"] = "bob"

	for range 20 {
		assert.Equal(t, GenerateKey("users", a), GenerateKey("users", b))
	}
}
