// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/panctlgo/internal/cache"
	"github.com/staranto/panctlgo/internal/meta"
	"github.com/staranto/panctlgo/internal/session"
)

var errNotSupported = errors.New("not supported by this cache backend")

// openCacheForCommand opens the logged in account's store for the host the
// session, or --host, points at.
func openCacheForCommand(cmd *cli.Command) (*Portal, error) {
	s, _ := session.Load()
	store, ttl, err := OpenStore(resolveHost(cmd, s), s)
	if err != nil {
		return nil, err
	}
	return &Portal{Store: store, TTL: ttl}, nil
}

// CachePurgeAction removes entries older than --older-than, which defaults
// to the configured TTL.
func CachePurgeAction(ctx context.Context, cmd *cli.Command) error {
	p, err := openCacheForCommand(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	purger, ok := p.Store.(cache.Purger)
	if !ok {
		return errNotSupported
	}

	age := p.TTL
	if cmd.IsSet("older-than") {
		age = cmd.Duration("older-than")
	}

	n, err := purger.Purge(age)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"removed": n, "older_than": age}).Debug("cache purged")

	fmt.Fprintf(writer(cmd), "Purged %d entries older than %s\n", n, age)
	return nil
}

// CacheClearAction removes every entry.
func CacheClearAction(ctx context.Context, cmd *cli.Command) error {
	p, err := openCacheForCommand(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(writer(cmd), "Cache cleared")
	return nil
}

// CacheStatAction reports the entry counts of the store.
func CacheStatAction(ctx context.Context, cmd *cli.Command) error {
	p, err := openCacheForCommand(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	statter, ok := p.Store.(cache.Statter)
	if !ok {
		return errNotSupported
	}
	st, err := statter.Stats()
	if err != nil {
		return err
	}

	attrs := BuildAttrs(cmd, "backend", "entries", "stale")
	return EmitJSONSlice([]cache.Stats{st}, attrs, cmd)
}

// CacheCommandBuilder constructs the "cache" command and its maintenance
// subcommands.
func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	hostFlag := func() cli.Flag {
		return NewHostFlag("cache", meta.Config.Source)
	}

	return &cli.Command{
		Name:  "cache",
		Usage: "inspect and maintain the result cache",
		Metadata: map[string]any{
			"meta": meta,
		},
		Commands: []*cli.Command{
			{
				Name:  "purge",
				Usage: "remove stale entries",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "age beyond which entries are removed",
						Value: cache.DefaultTTL,
						Validator: func(value time.Duration) error {
							if value <= 0 {
								return errors.New("must be positive")
							}
							return nil
						},
					},
					hostFlag(),
				},
				Action: CachePurgeAction,
			},
			{
				Name:   "clear",
				Usage:  "remove every entry",
				Flags:  []cli.Flag{hostFlag()},
				Action: CacheClearAction,
			},
			{
				Name:   "stat",
				Usage:  "show entry counts",
				Flags:  append([]cli.Flag{hostFlag()}, NewGlobalFlags("cache")...),
				Action: CacheStatAction,
			},
		},
	}
}
