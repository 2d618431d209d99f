// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	md2man "github.com/cpuguy83/go-md2man/v2/md2man"
	"github.com/urfave/cli/v3"

	"github.com/staranto/panctlgo/internal/command"
)

// Minimal doc generator. Walks the panctl command tree and generates:
//   - docs/commands/<cmd>.md, the canonical markdown
//   - docs/man/share/man1/panctl-<cmd>.1 via md2man
//   - docs/tldr/panctl-<cmd>.md from the usage line and command examples

func main() {
	var (
		repoRoot           string
		writeOnlyIfChanged bool
	)

	flag.StringVar(&repoRoot, "root", ".", "repo root (default current dir)")
	flag.BoolVar(&writeOnlyIfChanged, "only-if-changed", true, "only write files if content changed")
	flag.Parse()

	commandsDir := filepath.Join(repoRoot, "docs", "commands")
	manOutDir := filepath.Join(repoRoot, "docs", "man", "share", "man1")
	tldrOutDir := filepath.Join(repoRoot, "docs", "tldr")

	for _, d := range []string{commandsDir, manOutDir, tldrOutDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			fatalf("creating output dir %s: %v", d, err)
		}
	}

	app, err := command.InitApp(context.Background(), []string{"panctl"})
	if err != nil {
		fatalf("building command tree: %v", err)
	}

	var processed int
	for _, cmd := range app.Commands {
		if cmd.Hidden {
			continue
		}

		md := buildMarkdown(cmd)
		mdPath := filepath.Join(commandsDir, cmd.Name+".md")
		if err := writeFileIfChanged(mdPath, []byte(md), writeOnlyIfChanged); err != nil {
			fatalf("writing markdown for %s: %v", cmd.Name, err)
		}

		manPath := filepath.Join(manOutDir, fmt.Sprintf("panctl-%s.1", cmd.Name))
		if err := writeFileIfChanged(manPath, md2man.Render([]byte(md)), writeOnlyIfChanged); err != nil {
			fatalf("writing man page for %s: %v", cmd.Name, err)
		}

		tldr := buildTLDR(cmd.Name, cmd.Usage, command.GetExamples(cmd))
		tldrPath := filepath.Join(tldrOutDir, fmt.Sprintf("panctl-%s.md", cmd.Name))
		if err := writeFileIfChanged(tldrPath, []byte(tldr), writeOnlyIfChanged); err != nil {
			fatalf("writing TLDR for %s: %v", cmd.Name, err)
		}

		processed++
	}

	if processed == 0 {
		fatalf("no commands found")
	}
}

func fatalf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
	os.Exit(1)
}

func writeFileIfChanged(path string, new []byte, onlyIfChanged bool) error {
	if !onlyIfChanged {
		return os.WriteFile(path, new, 0o644)
	}
	old, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return os.WriteFile(path, new, 0o644)
		}
		return err
	}
	if bytes.Equal(bytes.TrimSpace(old), bytes.TrimSpace(new)) {
		return nil
	}
	return os.WriteFile(path, new, 0o644)
}

// buildMarkdown renders a command page in the section layout md2man expects.
func buildMarkdown(cmd *cli.Command) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# panctl-%s 1\n\n", cmd.Name)

	b.WriteString("## NAME\n\n")
	fmt.Fprintf(&b, "panctl-%s - %s\n\n", cmd.Name, cmd.Usage)

	b.WriteString("## SYNOPSIS\n\n")
	synopsis := cmd.UsageText
	if synopsis == "" {
		synopsis = "panctl " + cmd.Name + " [options]"
	}
	fmt.Fprintf(&b, "`%s`\n\n", synopsis)

	if len(cmd.Commands) > 0 {
		b.WriteString("## COMMANDS\n\n")
		for _, sub := range cmd.Commands {
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", sub.Name, sub.Usage)
		}
	}

	if len(cmd.Flags) > 0 {
		b.WriteString("## OPTIONS\n\n")
		for _, f := range cmd.Flags {
			fmt.Fprintf(&b, "**%s**\n: %s\n\n", flagNames(f), flagUsage(f))
		}
	}

	if exs := command.GetExamples(cmd); len(exs) > 0 {
		b.WriteString("## EXAMPLES\n\n")
		for _, ex := range exs {
			fmt.Fprintf(&b, "%s:\n\n    %s\n\n", capitalize(ex[1]), ex[0])
		}
	}

	return b.String()
}

func flagNames(f cli.Flag) string {
	var names []string
	for _, n := range f.Names() {
		if len(n) == 1 {
			names = append(names, "-"+n)
		} else {
			names = append(names, "--"+n)
		}
	}
	return strings.Join(names, ", ")
}

func flagUsage(f cli.Flag) string {
	if df, ok := f.(cli.DocGenerationFlag); ok {
		return df.GetUsage()
	}
	return ""
}

func buildTLDR(cmd, short string, exs [][2]string) string {
	var b strings.Builder
	b.WriteString("# panctl-" + cmd + "\n\n")
	if short != "" {
		b.WriteString("> " + capitalize(short) + ".\n")
	} else {
		b.WriteString("> panctl " + cmd + "\n")
	}
	b.WriteString("> More information: https://github.com/staranto/panctlgo.\n\n")

	if len(exs) == 0 {
		b.WriteString("- Show help for the command:\n\n")
		b.WriteString("`panctl " + cmd + " --help`\n")
		return b.String()
	}

	for i, ex := range exs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + capitalize(strings.TrimSpace(ex[1])) + ":\n\n")
		b.WriteString("`" + strings.Join(strings.Fields(ex[0]), " ") + "`\n")
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
