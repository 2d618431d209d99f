// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/panctlgo/internal/meta"
)

const bashCompletionScript = `# bash completion for panctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_panctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "uq sq cq dq dash login logout browse cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --local -l --output -o --sort -s --titles -t --schema --refresh -r --host -H --token"
    local users="--search --role --order --limit"

    case "$cmd" in
        uq)
            local opts="$common $users --max -m"
            ;;
        sq|cq|dq|dash)
            local opts="$common"
            ;;
        login)
            local opts="--email -e --password-stdin --host -H"
            ;;
        logout)
            local opts="--host -H"
            ;;
        browse)
            local opts="$users --host -H --token"
            ;;
        cache)
            local opts="purge clear stat --older-than --host -H"
            ;;
        completion)
            local opts="bash zsh"
            ;;
        *)
            local opts="$common"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --role)
            COMPREPLY=( $(compgen -W "user admin master" -- "$cur") )
            return 0
            ;;
        --order)
            COMPREPLY=( $(compgen -W "newest oldest" -- "$cur") )
            return 0
            ;;
    esac

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _panctl panctl
`

const zshCompletionScript = `#compdef panctl

_panctl() {
  local -a cmds
  cmds=(
    'uq:user query'
    'sq:user search'
    'cq:PAN card query'
    'dq:document query'
    'dash:dashboard statistics'
    'login:log in to the portal'
    'logout:forget the saved session and clear the cache'
    'browse:interactive users browser'
    'cache:inspect and maintain the result cache'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-l --local)'{-l,--local}'[local timestamps]'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '(-r --refresh)'{-r,--refresh}'[ignore cached results]'
  '(-H --host)'{-H,--host}'[portal API base URL]:url'
  '--token[bearer token]:token'
  '--schema[dump schema]'
  )

  local -a users
  users=(
  '--search[match name, email or mobile]:term'
  '--role[only this role]:role:(user admin master)'
  '--order[newest or oldest first]:order:(newest oldest)'
  '--limit[users per page]:limit'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'panctl commands' cmds
    return
  fi

  case $words[2] in
    uq)
      _arguments -C $common $users '(-m --max)'{-m,--max}'[stop after this many users]:max'
      ;;
    sq)
      _arguments -C $common '1:term'
      ;;
    cq|dq|dash)
      _arguments -C $common
      ;;
    login)
      _arguments -C \
        '(-e --email)'{-e,--email}'[account email]:email' \
        '--password-stdin[read the password from stdin]' \
        '(-H --host)'{-H,--host}'[portal API base URL]:url'
      ;;
    logout)
      _arguments -C '(-H --host)'{-H,--host}'[portal API base URL]:url'
      ;;
    browse)
      _arguments -C $users '(-H --host)'{-H,--host}'[portal API base URL]:url' '--token[bearer token]:token'
      ;;
    cache)
      _arguments '1: :((purge clear stat))' '--older-than[age]:duration'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _panctl panctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := writer(cmd)

	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: panctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "panctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
