// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/panctlgo/internal/feed"
	"github.com/staranto/panctlgo/internal/meta"
	"github.com/staranto/panctlgo/internal/portal"
	"github.com/staranto/panctlgo/internal/scroll"
)

var errNoSearchTerm = errors.New("a search term is required")

// searchTerm is the positional argument, joined so that unquoted names work.
func searchTerm(cmd *cli.Command) string {
	return strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
}

// SqCommandAction is the action handler for the "sq" subcommand. The portal
// answers a search with a single page.
func SqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[portal.User]{
		CommandName:  "sq",
		SchemaType:   reflect.TypeOf(portal.User{}),
		DefaultAttrs: []string{"_id:id", "name", "email", "mobile"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]portal.User, error) {
			term := searchTerm(cmd)
			if term == "" {
				return nil, errNoSearchTerm
			}

			p, err := InitPortal(ctx, cmd, true)
			if err != nil {
				return nil, err
			}
			defer p.Close()

			pager := scroll.New(p.Store, feed.SearchKey(term), feed.Search(p.Client, term), p.PagerOptions()...)
			return drainPager(ctx, cmd, pager, 0)
		},
	}
	return runner.Run(ctx, cmd)
}

// SqCommandBuilder constructs the cli.Command definition for the "sq" command.
func SqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "sq",
		Usage:     "user search",
		UsageText: `panctl sq <term> [options]`,
		Examples: [][2]string{
			{"panctl sq asha", "users matching asha"},
			{"panctl sq 98000 -a createdAt::h", "search by mobile, show signup age"},
		},
		Action: SqCommandAction,
		Meta:   meta,
	}).Build()
}
