// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/panctlgo/internal/feed"
	"github.com/staranto/panctlgo/internal/meta"
	"github.com/staranto/panctlgo/internal/portal"
	"github.com/staranto/panctlgo/internal/scroll"
)

// UserQueryFromFlags builds the users query selected by the uq and browse
// flags.
func UserQueryFromFlags(cmd *cli.Command) portal.UserQuery {
	return portal.UserQuery{
		Limit:  cmd.Int("limit"),
		Search: cmd.String("search"),
		Role:   cmd.String("role"),
		Sort:   cmd.String("order"),
	}
}

// UqCommandAction is the action handler for the "uq" subcommand. It pages
// through the users listing until --max rows are held or the listing is
// exhausted.
func UqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[portal.User]{
		CommandName:  "uq",
		SchemaType:   reflect.TypeOf(portal.User{}),
		DefaultAttrs: []string{"_id:id", "name", "email", "role"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]portal.User, error) {
			p, err := InitPortal(ctx, cmd, true)
			if err != nil {
				return nil, err
			}
			defer p.Close()

			q := UserQueryFromFlags(cmd)
			key := feed.UsersKey(q)
			log.WithField("key", key).Debug("users query")

			pager := scroll.New(p.Store, key, feed.Users(p.Client, q), p.PagerOptions()...)
			return drainPager(ctx, cmd, pager, cmd.Int("max"))
		},
	}
	return runner.Run(ctx, cmd)
}

// userQueryFlags are shared by uq and browse.
func userQueryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "search",
			Usage: "match name, email or mobile",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:  "role",
			Usage: "only users with this role (user, admin, master)",
			Validator: func(value string) error {
				return FlagValidators(value, RoleValidator)
			},
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "newest or oldest first",
			Value: portal.SortNewest,
			Validator: func(value string) error {
				return FlagValidators(value, OrderValidator)
			},
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "users per page",
			Value: feed.DefaultPageSize,
			Validator: func(value int) error {
				return FlagValidators(value, NonNegativeValidator)
			},
		},
	}
}

// UqCommandBuilder constructs the cli.Command definition for the "uq" command,
// wiring flags, metadata, and the action/validator handlers.
func UqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "uq",
		Usage:     "user query",
		UsageText: `panctl uq [options]`,
		Flags: append(userQueryFlags(),
			&cli.IntFlag{
				Name:    "max",
				Aliases: []string{"m"},
				Usage:   "stop after this many users, 0 for all",
				Validator: func(value int) error {
					return FlagValidators(value, NonNegativeValidator)
				},
			},
		),
		Examples: [][2]string{
			{"panctl uq", "newest users, all pages"},
			{"panctl uq --role admin -m 20", "first 20 admins"},
			{"panctl uq --search asha --order oldest", "matching users, oldest first"},
			{"panctl uq -a mobile,createdAt::h --sort=-createdAt", "extra columns, client side sort"},
			{"panctl uq --filter 'email~example.com' -o json", "filter then emit JSON"},
		},
		Action: UqCommandAction,
		Meta:   meta,
	}).Build()
}
