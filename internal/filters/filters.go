// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/panctlgo/internal/attrs"
	"github.com/staranto/panctlgo/internal/driller"
)

// Operator is the comparison a Filter applies.
type Operator string

const (
	// Equal is exact equality, numeric when both sides are numbers.
	Equal Operator = "="
	// Like is a case insensitive substring match, e.g. email~Example.COM.
	Like Operator = "~"
	// Prefix is a case sensitive prefix match, e.g. panCardNumber^ABC.
	Prefix  Operator = "^"
	Greater Operator = ">"
	Less    Operator = "<"
	// Contains is a substring match on strings, element membership on arrays
	// and key membership on objects.
	Contains Operator = "@"
	// Match is a regular expression match.
	Match Operator = "/"
)

// DelimEnv overrides the "," separating filters in a --filter value.
const DelimEnv = "PANCTL_FILTER_DELIM"

// filterRegex splits key, optionally negated operator and target.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is one parsed --filter expression, e.g. role!=user.
type Filter struct {
	Key    string
	Negate bool
	Op     Operator
	Target string

	re *regexp.Regexp
}

// BuildFilters parses a --filter value. Malformed expressions and invalid
// regular expressions are logged and dropped.
func BuildFilters(spec string) []Filter {
	if strings.TrimSpace(spec) == "" {
		return nil
	}

	delim := ","
	if d, ok := os.LookupEnv(DelimEnv); ok && d != "" {
		delim = d
	}

	var out []Filter
	for _, expr := range strings.Split(spec, delim) {
		f, ok := parseFilter(expr)
		if !ok {
			log.Errorf("invalid filter: %s", expr)
			continue
		}
		out = append(out, f)
	}
	return out
}

func parseFilter(expr string) (Filter, bool) {
	parts := filterRegex.FindStringSubmatch(expr)
	if parts == nil {
		return Filter{}, false
	}

	f := Filter{
		Key:    strings.TrimPrefix(strings.TrimSpace(parts[1]), "."),
		Negate: strings.HasPrefix(parts[2], "!"),
		Op:     Operator(strings.TrimPrefix(parts[2], "!")),
		Target: parts[3],
	}
	if f.Key == "" {
		return Filter{}, false
	}

	if f.Op == Match {
		re, err := regexp.Compile(f.Target)
		if err != nil {
			return Filter{}, false
		}
		f.re = re
	}
	return f, true
}

// Matches reports whether v passes the filter. A missing or null value never
// passes, negated or not.
func (f Filter) Matches(v gjson.Result) bool {
	if !v.Exists() || v.Type == gjson.Null {
		return false
	}
	return f.test(v) != f.Negate
}

func (f Filter) test(v gjson.Result) bool {
	switch {
	case v.IsArray():
		if f.Op == Contains {
			for _, e := range v.Array() {
				if e.String() == f.Target {
					return true
				}
			}
			return false
		}
		// Any element, e.g. a drilled path that fans out over a list.
		for _, e := range v.Array() {
			if f.test(e) {
				return true
			}
		}
		return false

	case v.IsObject():
		if f.Op != Contains {
			return false
		}
		_, ok := v.Map()[f.Target]
		return ok

	case v.Type == gjson.Number:
		if n, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64); err == nil {
			switch f.Op {
			case Equal:
				return v.Float() == n
			case Greater:
				return v.Float() > n
			case Less:
				return v.Float() < n
			}
		}
	}

	return f.testString(v.String())
}

func (f Filter) testString(s string) bool {
	switch f.Op {
	case Equal:
		return s == f.Target
	case Like:
		return strings.Contains(strings.ToLower(s), strings.ToLower(f.Target))
	case Prefix:
		return strings.HasPrefix(s, f.Target)
	case Greater:
		return s > f.Target
	case Less:
		return s < f.Target
	case Contains:
		return strings.Contains(s, f.Target)
	case Match:
		return f.re != nil && f.re.MatchString(s)
	}
	return false
}

// FilterDataset keeps the records of candidates that pass every filter in
// spec and projects each onto attrs, keyed by output name. Values are left
// untransformed.
func FilterDataset(candidates gjson.Result, attrs attrs.AttrList, spec string) []map[string]interface{} {
	filters := BuildFilters(spec)

	//nolint:prealloc
	var rows []map[string]interface{}
	for _, record := range candidates.Array() {
		if !keep(record, attrs, filters) {
			continue
		}
		rows = append(rows, project(record, attrs))
	}
	return rows
}

func keep(record gjson.Result, attrs attrs.AttrList, filters []Filter) bool {
	for _, f := range filters {
		if !f.Matches(driller.Driller(record.Raw, resolveKey(attrs, f.Key))) {
			return false
		}
	}
	return true
}

func project(record gjson.Result, attrs attrs.AttrList) map[string]interface{} {
	row := make(map[string]interface{}, len(attrs))
	for _, a := range attrs {
		row[a.OutputKey] = driller.Driller(record.Raw, a.Key).Value()
	}
	return row
}

// resolveKey maps a filter key onto the record path it reads. An attr's
// output name wins, so --filter id=u-03 reads _id under the default uq attrs.
// Anything else is taken as a path into the record, e.g. panCard.panCardNumber.
func resolveKey(attrs attrs.AttrList, key string) string {
	for _, a := range attrs {
		if a.OutputKey == key {
			return a.Key
		}
	}
	return key
}
