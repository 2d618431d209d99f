// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/panctlgo/internal/meta"
	"github.com/staranto/panctlgo/internal/portal"
)

// DashCommandAction is the action handler for the "dash" subcommand. The
// dashboard is always fetched live and emitted as a single row.
func DashCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[portal.Dashboard]{
		CommandName:  "dash",
		SchemaType:   reflect.TypeOf(portal.Dashboard{}),
		DefaultAttrs: []string{"totalUsers:users:c", "totalPanCards:pancards:c", "totalDocuments:documents:c", "activeToday:active:c", "recentSignups:signups:c", "roleStats.admins:admins", "roleStats.masters:masters"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) ([]portal.Dashboard, error) {
			p, err := InitPortal(ctx, cmd, true)
			if err != nil {
				return nil, err
			}
			defer p.Close()

			d, err := p.Client.Dashboard(ctx)
			if err != nil {
				return nil, err
			}
			return []portal.Dashboard{*d}, nil
		},
	}
	return runner.Run(ctx, cmd)
}

// DashCommandBuilder constructs the cli.Command definition for the "dash"
// command.
func DashCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "dash",
		Usage:     "dashboard statistics",
		UsageText: `panctl dash [options]`,
		Examples: [][2]string{
			{"panctl dash", "portal totals"},
			{"panctl dash -o yaml -r", "fresh totals as YAML"},
		},
		Action: DashCommandAction,
		Meta:   meta,
	}).Build()
}
