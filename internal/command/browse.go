// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/panctlgo/internal/feed"
	"github.com/staranto/panctlgo/internal/meta"
	"github.com/staranto/panctlgo/internal/portal"
	"github.com/staranto/panctlgo/internal/scroll"
	"github.com/staranto/panctlgo/internal/session"
	"github.com/staranto/panctlgo/internal/tui"
)

var errNotInteractive = errors.New("browse needs an interactive terminal")

// BrowseCommandAction runs the interactive users browser.
func BrowseCommandAction(ctx context.Context, cmd *cli.Command) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotInteractive
	}

	p, err := InitPortal(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer p.Close()

	q := UserQueryFromFlags(cmd)
	pager := scroll.New(p.Store, feed.UsersKey(q), feed.Users(p.Client, q), p.PagerOptions()...)
	defer pager.Close()

	model := tui.New(ctx, pager, p.Client, q, tui.WithLogout(func() error {
		return session.Logout(p.Store)
	}))
	defer model.Close()

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Loads started by the trigger report back through the program.
	unsubscribe := pager.Subscribe(func(st scroll.State[portal.User]) {
		prog.Send(tui.StateMsg{State: st})
	})
	defer unsubscribe()

	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}

	if m, ok := final.(tui.Model); ok && m.LoggedOut() {
		fmt.Fprintln(writer(cmd), "Logged out")
	}
	return nil
}

// BrowseCommandBuilder constructs the cli.Command definition for "browse".
func BrowseCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "interactive users browser",
		UsageText: `panctl browse [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append(userQueryFlags(),
			NewHostFlag("browse", meta.Config.Source),
			NewTokenFlag(),
		),
		Action: BrowseCommandAction,
	}
}
