// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/panctlgo/internal/cache"
	"github.com/staranto/panctlgo/internal/feed"
	"github.com/staranto/panctlgo/internal/meta"
	"github.com/staranto/panctlgo/internal/portal"
	"github.com/staranto/panctlgo/internal/scroll"
)

// CqCommandAction is the action handler for the "cq" subcommand. It lists
// the PAN cards visible to the logged in operator.
func CqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[portal.PanCard]{
		CommandName:  "cq",
		SchemaType:   reflect.TypeOf(portal.PanCard{}),
		DefaultAttrs: []string{"_id:id", "panCardName:name", "panCardNumber:number", "createdAt:created:h"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]portal.PanCard, error) {
			p, err := InitPortal(ctx, cmd, false)
			if err != nil {
				return nil, err
			}
			defer p.Close()

			key := cache.GenerateKey(feed.PanCardsBase, nil)
			pager := scroll.New(p.Store, key, feed.PanCards(p.Client), p.PagerOptions()...)
			return drainPager(ctx, cmd, pager, 0)
		},
	}
	return runner.Run(ctx, cmd)
}

// CqCommandBuilder constructs the cli.Command definition for the "cq" command.
func CqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "cq",
		Usage:     "PAN card query",
		UsageText: `panctl cq [options]`,
		Examples: [][2]string{
			{"panctl cq", "your PAN cards"},
			{"panctl cq --sort=-createdAt -t", "newest first, with titles"},
		},
		Action: CqCommandAction,
		Meta:   meta,
	}).Build()
}
