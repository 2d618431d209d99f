// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/panctlgo/internal/attrs"
	"github.com/staranto/panctlgo/internal/cache"
	"github.com/staranto/panctlgo/internal/config"
	"github.com/staranto/panctlgo/internal/meta"
	"github.com/staranto/panctlgo/internal/output"
	"github.com/staranto/panctlgo/internal/portal"
	"github.com/staranto/panctlgo/internal/scroll"
	"github.com/staranto/panctlgo/internal/session"
)

// DumpSchemaIfRequested prints the schema for the provided type when
// --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema(writer(cmd), "", t)
		return true
	}
	return false
}

// DumpExamplesIfRequested prints the command's examples when --examples is
// set, and returns true if it handled the request.
func DumpExamplesIfRequested(cmd *cli.Command) bool {
	if cmd.Bool("examples") {
		output.DumpExamples(writer(cmd), GetExamples(cmd))
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// EmitJSONSlice marshals results and passes them to the common output
// routine.
func EmitJSONSlice(results any, al attrs.AttrList, cmd *cli.Command) error {
	b, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return output.SliceDiceSpit(*bytes.NewBuffer(b), al, cmd, "", writer(cmd))
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// GetExamples returns the usage examples stored in the command's Metadata.
func GetExamples(cmd *cli.Command) [][2]string {
	if cmd == nil || cmd.Metadata == nil {
		return nil
	}
	ex, _ := cmd.Metadata["examples"].([][2]string)
	return ex
}

// writer is where a command's results go.
func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}

// QueryCommandBuilder constructs a cli.Command for the query subcommands
// using a consistent pattern. The builder wires metadata, adds the schema,
// examples, refresh, host and token flags, applies global flags, and sets up
// validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
	// Examples are command line and description pairs for --examples and the
	// generated docs.
	Examples [][2]string
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta":     qcb.Meta,
			"examples": qcb.Examples,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			examplesFlag,
			schemaFlag,
			refreshFlag,
			NewHostFlag(qcb.Name, qcb.Meta.Config.Source),
			NewTokenFlag(),
		}, NewGlobalFlags(qcb.Name)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action pattern for all
// query subcommands. It handles the examples and schema short-circuits, attrs and output
// emission, with data fetching provided by FetchFn.
type QueryActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command) ([]T, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if DumpExamplesIfRequested(cmd) || DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	attrs := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	results, err := qar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}

	return EmitJSONSlice(results, attrs, cmd)
}

// Portal bundles what a portal query needs: the client, the cache store and
// the TTL pagers run with.
type Portal struct {
	Client  *portal.Client
	Session *session.Session
	Store   cache.Store
	TTL     time.Duration
}

// Close releases the store connection, if it holds one.
func (p *Portal) Close() {
	if c, ok := p.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.WithError(err).Warn("failed to close cache store")
		}
	}
}

// PagerOptions are the scroll options every command pager runs with.
func (p *Portal) PagerOptions() []scroll.Option {
	return []scroll.Option{scroll.WithTTL(p.TTL)}
}

// InitPortal loads the session, applies the admin gate when admin is set, and
// opens the client and cache store for the selected host.
func InitPortal(ctx context.Context, cmd *cli.Command, admin bool) (*Portal, error) {
	s, err := session.Load()
	if tok := cmd.String("token"); tok != "" {
		override := &session.Session{Token: tok}
		if s != nil {
			override.Host = s.Host
		}
		s, err = override, nil
	}
	if err != nil {
		return nil, err
	}

	if s.Expired(time.Now()) {
		return nil, session.ErrExpired
	}
	if admin {
		if err := s.RequireAdmin(); err != nil {
			return nil, err
		}
	}

	host := resolveHost(cmd, s)
	client, err := portal.NewClient(host, portal.WithToken(s.Token))
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"host": client.BaseURL(), "role": s.Role()}).Debug("portal ready")

	store, ttl, err := OpenStore(host, s)
	if err != nil {
		return nil, err
	}

	return &Portal{Client: client, Session: s, Store: store, TTL: ttl}, nil
}

// resolveHost prefers an explicitly set --host, then the host the session was
// created against, then the flag's default.
func resolveHost(cmd *cli.Command, s *session.Session) string {
	if !cmd.IsSet("host") && s != nil && s.Host != "" {
		return s.Host
	}
	return cmd.String("host")
}

// OpenStore opens the cache store configured under the cache key of the
// config file. Entries are namespaced by host and by the identity of s, so
// two accounts on one portal never read each other's results.
func OpenStore(host string, s *session.Session) (cache.Store, time.Duration, error) {
	ttl, err := config.GetDuration("cache.ttl", cache.DefaultTTL)
	if err != nil {
		return nil, 0, err
	}

	backend, _ := config.GetString("cache.backend", cache.BackendFile)
	dir, _ := config.GetString("cache.dir", "")
	addr, _ := config.GetString("cache.redis.addr", "localhost:6379")
	password, _ := config.GetString("cache.redis.password", "")
	db, _ := config.GetInt("cache.redis.db", 0)
	prefix, _ := config.GetString("cache.redis.prefix", "")

	store, err := cache.Open(cache.Settings{
		Backend:   backend,
		TTL:       ttl,
		Namespace: storeNamespace(host, s),
		Dir:       dir,
		Redis: cache.RedisOptions{
			Addr:     addr,
			Password: password,
			DB:       db,
			Prefix:   prefix,
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open %s cache: %w", backend, err)
	}

	log.WithFields(log.Fields{"backend": backend, "ttl": ttl}).Debug("cache store opened")
	return store, ttl, nil
}

func storeNamespace(host string, s *session.Session) string {
	if id := s.Identity(); id != "" {
		return host + "/" + id
	}
	return host
}

// drainPager loads p, refreshing first when --refresh is set, and returns up
// to limit items.
func drainPager[T any](ctx context.Context, cmd *cli.Command, p *scroll.Pager[T], limit int) ([]T, error) {
	defer p.Close()

	if cmd.Bool("refresh") {
		p.Refresh(ctx)
	}
	return scroll.Drain(ctx, p, limit)
}
