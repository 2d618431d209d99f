// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package scroll

import (
	"time"

	"github.com/apex/log"

	"github.com/staranto/panctlgo/internal/cache"
)

// Option configures a Pager.
type Option func(*options)

type options struct {
	ttl     time.Duration
	enabled bool
	logger  log.Interface
}

// WithTTL sets how old a cache entry may be and still be adopted.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithEnabled sets whether Start does anything. A disabled Pager waits for
// SetEnabled(true).
func WithEnabled(enabled bool) Option {
	return func(o *options) {
		o.enabled = enabled
	}
}

func WithLogger(l log.Interface) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		ttl:     cache.DefaultTTL,
		enabled: true,
		logger:  log.Log,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
