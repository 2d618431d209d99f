// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Settings selects and configures a Store backend.
type Settings struct {
	Backend string
	TTL     time.Duration

	// Namespace separates the entries of different portals, usually the
	// portal host. It becomes a subdirectory for the file backend and part of
	// the key prefix for redis.
	Namespace string

	Dir   string
	Redis RedisOptions
}

// Open returns the Store described by s. An empty backend means memory, and
// so does a file backend when the cache is disabled or no directory resolves.
func Open(s Settings) (Store, error) {
	opts := []Option{WithTTL(s.TTL)}

	switch strings.ToLower(s.Backend) {
	case "", BackendMemory:
		return NewMemoryStore(opts...), nil

	case BackendFile:
		dir := s.Dir
		if dir == "" {
			var ok bool
			if dir, ok = Dir(); !ok || !Enabled() {
				return NewMemoryStore(opts...), nil
			}
		}
		if s.Namespace != "" {
			dir = filepath.Join(dir, sanitize(s.Namespace))
		}
		return NewFileStore(dir, opts...)

	case BackendRedis:
		ro := s.Redis
		if ro.Prefix == "" {
			ro.Prefix = DefaultRedisPrefix
		}
		if s.Namespace != "" {
			ro.Prefix += sanitize(s.Namespace) + ":"
		}
		return OpenRedis(ro, opts...)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
}

// sanitize reduces a namespace such as a base URL to something safe as a path
// element or key segment.
func sanitize(ns string) string {
	ns = strings.TrimPrefix(ns, "https://")
	ns = strings.TrimPrefix(ns, "http://")
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, ns)
}
