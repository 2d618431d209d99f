// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/panctlgo/internal/cache"
	"github.com/staranto/panctlgo/internal/meta"
	"github.com/staranto/panctlgo/internal/portal"
	"github.com/staranto/panctlgo/internal/session"
)

var (
	errNoPassword = errors.New("no password given")
	errNoTerminal = errors.New("stdin is not a terminal, use --password-stdin")
)

// passwordReader is swapped by tests.
var passwordReader = readPassword

// readPassword reads the password from stdin, prompting on stderr when stdin
// is a terminal.
func readPassword(fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errNoTerminal
	}

	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// LoginCommandAction authenticates against the portal and saves the session.
func LoginCommandAction(ctx context.Context, cmd *cli.Command) error {
	password, err := passwordReader(cmd.Bool("password-stdin"))
	if err != nil {
		return err
	}
	if password == "" {
		return errNoPassword
	}

	host := cmd.String("host")
	client, err := portal.NewClient(host)
	if err != nil {
		return err
	}

	res, err := client.Login(ctx, cmd.String("email"), password)
	if err != nil {
		return err
	}

	s := &session.Session{
		Host:      client.BaseURL(),
		Token:     res.Token,
		User:      res.User,
		CreatedAt: time.Now().UTC(),
	}
	prev, _ := session.Load()
	if err := session.Save(s); err != nil {
		return err
	}
	if prev != nil && (prev.Host != s.Host || prev.Identity() != s.Identity()) {
		clearStore(prev.Host, prev)
	}

	role := s.Role()
	log.WithFields(log.Fields{"host": s.Host, "role": role}).Info("logged in")

	fmt.Fprintf(writer(cmd), "Logged in as %s (%s)\n", res.User.Email, role)
	if !session.IsAdmin(role) && role != "" {
		fmt.Fprintln(writer(cmd), "Note: uq, sq, dash and browse need an admin or master role.")
	}
	return nil
}

// clearStore drops what an earlier login left in the cache. Failing to is
// logged, not fatal; the new login reads its own namespace either way.
func clearStore(host string, s *session.Session) {
	store, _, err := OpenStore(host, s)
	if err != nil {
		log.WithError(err).Warn("failed to open previous cache store")
		return
	}
	p := &Portal{Store: store}
	defer p.Close()

	if err := cache.ClearAll(store); err != nil {
		log.WithError(err).Warn("failed to clear previous cache store")
		return
	}
	log.WithField("host", host).Debug("previous cache store cleared")
}

// LoginCommandBuilder constructs the cli.Command definition for "login".
func LoginCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "log in to the portal",
		UsageText: `panctl login --email <email> [--password-stdin]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Aliases:  []string{"e"},
				Usage:    "account email",
				Required: true,
				Sources: cli.NewValueSourceChain(
					cli.EnvVar("PANCTL_EMAIL"),
				),
				Validator: func(value string) error {
					return FlagValidators(value, JammedFlagValidator)
				},
			},
			&cli.BoolFlag{
				Name:        "password-stdin",
				Usage:       "read the password from stdin",
				HideDefault: true,
			},
			NewHostFlag("login", meta.Config.Source),
		},
		Action: LoginCommandAction,
	}
}

// LogoutCommandAction forgets the session and clears the cache store.
func LogoutCommandAction(ctx context.Context, cmd *cli.Command) error {
	s, _ := session.Load()
	store, _, err := OpenStore(resolveHost(cmd, s), s)
	if err != nil {
		return err
	}
	p := &Portal{Store: store}
	defer p.Close()

	if err := session.Logout(store); err != nil {
		return err
	}

	fmt.Fprintln(writer(cmd), "Logged out")
	return nil
}

// LogoutCommandBuilder constructs the cli.Command definition for "logout".
func LogoutCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the saved session and clear the cache",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: []cli.Flag{
			NewHostFlag("logout", meta.Config.Source),
		},
		Action: LogoutCommandAction,
	}
}
