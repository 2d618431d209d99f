// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/urfave/cli/v3"
)

func TestBuildTLDR(t *testing.T) {
	got := buildTLDR("uq", "user query", [][2]string{
		{"panctl  uq   -m 20", "first 20 users"},
		{"panctl uq --role admin", "admins"},
	})

	want := "# panctl-uq\n\n" +
		"> User query.\n" +
		"> More information: https://github.com/staranto/panctlgo.\n\n" +
		"- First 20 users:\n\n`panctl uq -m 20`\n" +
		"\n- Admins:\n\n`panctl uq --role admin`\n"
	assert.Equal(t, want, got)

	assert.Contains(t, buildTLDR("logout", "", nil), "`panctl logout --help`")
}

func TestBuildMarkdown(t *testing.T) {
	cmd := &cli.Command{
		Name:  "cache",
		Usage: "inspect the result cache",
		Commands: []*cli.Command{
			{Name: "clear", Usage: "remove every entry"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Aliases: []string{"H"}, Usage: "portal API base URL"},
		},
		Metadata: map[string]any{
			"examples": [][2]string{{"panctl cache clear", "start over"}},
		},
	}

	md := buildMarkdown(cmd)
	assert.Contains(t, md, "# panctl-cache 1\n")
	assert.Contains(t, md, "panctl-cache - inspect the result cache\n")
	assert.Contains(t, md, "`panctl cache [options]`")
	assert.Contains(t, md, "**clear**\n: remove every entry")
	assert.Contains(t, md, "**--host, -H**\n: portal API base URL")
	assert.Contains(t, md, "Start over:\n\n    panctl cache clear")
}
