// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// segment is one step of a path: a key followed by zero or more indexes, as
// in "tags[0]".
type segment struct {
	key     string
	indexes []int
}

// Driller resolves path against doc. Path elements are separated by dots and
// may carry [n] indexes. Arrays of exactly one element are stepped through
// transparently, so "panCards.number" works whether the portal returned an
// object or a one-element list. A key applied to a longer array collects
// that key from every element. A missing value is a Result that does not
// exist.
func Driller(doc, path string) gjson.Result {
	result := gjson.Parse(doc)
	if path == "" {
		return result
	}

	for _, seg := range parse(path) {
		if !result.Exists() {
			return gjson.Result{}
		}

		if seg.key != "" {
			if result.IsArray() {
				arr := result.Array()
				if len(arr) == 1 {
					result = arr[0].Get(escape(seg.key))
				} else {
					result = result.Get("#." + escape(seg.key))
				}
			} else {
				result = result.Get(escape(seg.key))
			}
		}

		for _, i := range seg.indexes {
			if !result.IsArray() {
				return gjson.Result{}
			}
			arr := result.Array()
			if i < 0 || i >= len(arr) {
				return gjson.Result{}
			}
			result = arr[i]
		}
	}

	if result.IsArray() {
		if arr := result.Array(); len(arr) == 1 {
			return arr[0]
		}
	}
	return result
}

func parse(path string) []segment {
	parts := strings.Split(path, ".")
	segs := make([]segment, 0, len(parts))

	for _, part := range parts {
		seg := segment{key: part}
		if open := strings.IndexByte(part, '['); open >= 0 {
			seg.key = part[:open]
			rest := part[open:]
			for strings.HasPrefix(rest, "[") {
				end := strings.IndexByte(rest, ']')
				if end < 0 {
					break
				}
				n, err := strconv.Atoi(rest[1:end])
				if err != nil {
					n = -1
				}
				seg.indexes = append(seg.indexes, n)
				rest = rest[end+1:]
			}
		}
		segs = append(segs, seg)
	}
	return segs
}

// escape protects gjson's path syntax characters inside a single key.
func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
