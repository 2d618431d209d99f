// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/staranto/panctlgo/internal/attrs"
	"github.com/staranto/panctlgo/internal/portal"
)

func TestBuildFilters(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []Filter
	}{
		{name: "empty", spec: "", want: nil},
		{name: "blank", spec: "  ", want: nil},
		{
			name: "equal",
			spec: "role=admin",
			want: []Filter{{Key: "role", Op: Equal, Target: "admin"}},
		},
		{
			name: "negated",
			spec: "role!=user",
			want: []Filter{{Key: "role", Op: Equal, Target: "user", Negate: true}},
		},
		{
			name: "nested path and leading dot",
			spec: ".panCard.panCardNumber^ABC",
			want: []Filter{{Key: "panCard.panCardNumber", Op: Prefix, Target: "ABC"}},
		},
		{
			name: "underscore key",
			spec: "_id=u-03",
			want: []Filter{{Key: "_id", Op: Equal, Target: "u-03"}},
		},
		{
			name: "several, malformed dropped",
			spec: "email~example.com,nonsense,panCardCount>1",
			want: []Filter{
				{Key: "email", Op: Like, Target: "example.com"},
				{Key: "panCardCount", Op: Greater, Target: "1"},
			},
		},
		{
			name: "operator without key",
			spec: "=admin",
			want: nil,
		},
		{
			name: "invalid regex dropped",
			spec: "name/([a-z",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFilters(tt.spec))
		})
	}
}

func TestBuildFilters_Delimiter(t *testing.T) {
	t.Setenv(DelimEnv, "|")

	got := BuildFilters("mobile^98|name~a,b")
	require.Len(t, got, 2)
	assert.Equal(t, "a,b", got[1].Target)
}

func TestFilter_Matches(t *testing.T) {
	user := `{"_id":"u-03","name":"Asha Verma","email":"Asha@Example.com","mobile":"9800000003",` +
		`"role":"admin","panCardCount":2,"verified":true,"tags":["kyc","priority"],` +
		`"panCard":{"panCardNumber":"ABCDE1234F"},"createdAt":"2026-03-01T10:00:00Z","deletedAt":null}`

	tests := []struct {
		spec string
		path string
		want bool
	}{
		{"role=admin", "role", true},
		{"role!=admin", "role", false},
		{"role=Admin", "role", false},
		{"email~example.COM", "email", true},
		{"email!~gmail", "email", true},
		{"mobile^98", "mobile", true},
		{"mobile^99", "mobile", false},
		{"name@Verma", "name", true},
		{"name@verma", "name", false},
		{"name/^Asha\\s", "name", true},
		{"panCardCount=2", "panCardCount", true},
		{"panCardCount>1", "panCardCount", true},
		{"panCardCount<2", "panCardCount", false},
		{"panCardCount!>5", "panCardCount", true},
		{"panCardCount^2", "panCardCount", true},
		{"createdAt>2026-01-01", "createdAt", true},
		{"createdAt<2026-01-01", "createdAt", false},
		{"verified=true", "verified", true},
		{"tags@kyc", "tags", true},
		{"tags!@vip", "tags", true},
		{"tags^prio", "tags", true},
		{"panCard@panCardNumber", "panCard", true},
		{"panCard@user", "panCard", false},
		{"deletedAt!=x", "deletedAt", false},
		{"missing!=x", "missing", false},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			f := BuildFilters(tt.spec)
			require.Len(t, f, 1)
			assert.Equal(t, tt.want, f[0].Matches(gjson.Get(user, tt.path)))
		})
	}
}

func mustJSON(t *testing.T, v any) gjson.Result {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return gjson.ParseBytes(b)
}

func ids(rows []map[string]interface{}, key string) []any {
	var out []any
	for _, r := range rows {
		out = append(out, r[key])
	}
	return out
}

func TestFilterDataset_Users(t *testing.T) {
	users := mustJSON(t, []portal.User{
		{ID: "u-01", Name: "Asha Verma", Email: "asha@example.com", Mobile: "9800000001", Role: portal.RoleAdmin, PanCardCount: 2},
		{ID: "u-02", Name: "Ravi Kumar", Email: "ravi@corp.in", Role: portal.RoleUser},
		{ID: "u-03", Name: "Meera Iyer", Email: "meera@example.com", Mobile: "9900000003", Role: portal.RoleMaster, PanCardCount: 1},
	})

	// The default uq attrs: _id shown as id, role only for filtering.
	var al attrs.AttrList
	require.NoError(t, al.Set("_id:id,name,email,!role"))

	tests := []struct {
		name string
		spec string
		want []any
	}{
		{name: "no filter", spec: "", want: []any{"u-01", "u-02", "u-03"}},
		{name: "output name resolves to _id", spec: "id=u-03", want: []any{"u-03"}},
		{name: "raw _id path", spec: "_id=u-02", want: []any{"u-02"}},
		{name: "hidden attr", spec: "role!=user", want: []any{"u-01", "u-03"}},
		{name: "record path outside attrs", spec: "panCardCount>1", want: []any{"u-01"}},
		{name: "like", spec: "email~EXAMPLE.com", want: []any{"u-01", "u-03"}},
		{name: "all must pass", spec: "email~example.com,mobile^99", want: []any{"u-03"}},
		{name: "omitted field fails the row", spec: "mobile!^99", want: []any{"u-01"}},
		{name: "nothing passes", spec: "role=owner", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := FilterDataset(users, al, tt.spec)
			assert.Equal(t, tt.want, ids(rows, "id"))
		})
	}

	rows := FilterDataset(users, al, "id=u-01")
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]interface{}{
		"id":    "u-01",
		"name":  "Asha Verma",
		"email": "asha@example.com",
		"role":  "admin",
	}, rows[0])
}

func TestFilterDataset_Documents(t *testing.T) {
	docs := mustJSON(t, []portal.Document{
		{ID: "d-1", Name: "lease.pdf", PanCard: portal.PanCard{ID: "p-1", Number: "ABCDE1234F"}},
		{ID: "d-2", Name: "salary.pdf", PanCard: portal.PanCard{ID: "p-2", Number: "XYZAB9876C"}},
		{ID: "d-3", Name: "form16.pdf", PanCard: portal.PanCard{ID: "p-1", Number: "ABCDE1234F"}},
	})

	var al attrs.AttrList
	require.NoError(t, al.Set("_id:id,documentName:name,panCard.panCardNumber:pan"))

	tests := []struct {
		spec string
		want []any
	}{
		{"panCard.panCardNumber^ABC", []any{"d-1", "d-3"}},
		{"pan^XYZ", []any{"d-2"}},
		{"panCard._id=p-1,name/^form", []any{"d-3"}},
		{"name!@.pdf", nil},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterDataset(docs, al, tt.spec), "id"))
		})
	}
}

func TestResolveKey(t *testing.T) {
	al := attrs.AttrList{
		{Key: "_id", OutputKey: "id"},
		{Key: "panCard.panCardNumber", OutputKey: "pan"},
	}

	assert.Equal(t, "_id", resolveKey(al, "id"))
	assert.Equal(t, "panCard.panCardNumber", resolveKey(al, "pan"))
	assert.Equal(t, "_id", resolveKey(al, "_id"))
	assert.Equal(t, "createdAt", resolveKey(al, "createdAt"))
	assert.Equal(t, "email", resolveKey(nil, "email"))
}
