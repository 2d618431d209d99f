// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Params are the filter values that make up a cache key. A nil value, a nil
// pointer or an empty string means "not set" and is left out of the key.
type Params map[string]any

// GenerateKey builds the cache key for base and params. Params are sorted by
// name so two equal filter sets always produce the same key regardless of the
// order they were assembled in. With no usable params the key is just base.
func GenerateKey(base string, params Params) string {
	names := make([]string, 0, len(params))
	for name, value := range params {
		if _, ok := render(value); ok {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return base
	}

	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		value, _ := render(params[name])
		pairs = append(pairs, name+"="+value)
	}

	return base + "?" + strings.Join(pairs, "&")
}

// render returns the string form of a param value and false when the value
// counts as unset.
func render(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case *string:
		if v == nil || *v == "" {
			return "", false
		}
		return *v, true
	case *int:
		if v == nil {
			return "", false
		}
		return fmt.Sprint(*v), true
	case *float64:
		if v == nil {
			return "", false
		}
		return fmt.Sprint(*v), true
	default:
		return fmt.Sprint(v), true
	}
}
