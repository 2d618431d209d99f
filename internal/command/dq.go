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

// DqCommandAction is the action handler for the "dq" subcommand. It lists
// uploaded documents along with the PAN card each belongs to.
func DqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[portal.Document]{
		CommandName:  "dq",
		SchemaType:   reflect.TypeOf(portal.Document{}),
		DefaultAttrs: []string{"_id:id", "documentName:name", "panCard.panCardNumber:pan", "createdAt:created:h"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]portal.Document, error) {
			p, err := InitPortal(ctx, cmd, false)
			if err != nil {
				return nil, err
			}
			defer p.Close()

			key := cache.GenerateKey(feed.DocumentsBase, nil)
			pager := scroll.New(p.Store, key, feed.Documents(p.Client), p.PagerOptions()...)
			return drainPager(ctx, cmd, pager, 0)
		},
	}
	return runner.Run(ctx, cmd)
}

// DqCommandBuilder constructs the cli.Command definition for the "dq" command.
func DqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "dq",
		Usage:     "document query",
		UsageText: `panctl dq [options]`,
		Examples: [][2]string{
			{"panctl dq", "your documents"},
			{"panctl dq --filter 'pan=ABCDE1234F'", "documents for one PAN card"},
		},
		Action: DqCommandAction,
		Meta:   meta,
	}).Build()
}
