// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/staranto/panctlgo/internal/portal"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f6be00"))
	filterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8f0"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f"))

	// printer groups the user count, e.g. 1,024 users.
	printer = message.NewPrinter(language.English)
)

// View renders the header, the visible rows and the footer.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.search.View())
	} else if m.query.Search != "" {
		b.WriteString(dimStyle.Render("search: " + m.query.Search))
	}
	b.WriteString("\n")

	b.WriteString(m.renderRows())
	b.WriteString(m.renderFooter())

	return b.String()
}

func (m Model) renderHeader() string {
	role := m.query.Role
	if role == "" {
		role = "all"
	}
	sort := m.query.Sort
	if sort == "" {
		sort = portal.SortNewest
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("panctl users"),
		"  ",
		filterStyle.Render(fmt.Sprintf("role:%s sort:%s", role, sort)),
	)
}

func (m Model) renderRows() string {
	var b strings.Builder

	items := m.state.Items
	end := min(m.top+m.listHeight(), len(items))
	for i := m.top; i < end; i++ {
		line := formatUser(items[i], m.width)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	// Pad so the footer stays put.
	for i := end - m.top; i < m.listHeight(); i++ {
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderFooter() string {
	st := m.state
	switch {
	case st.IsLoading:
		return m.spinner.View() + " Loading users..."
	case st.Error != "":
		return errorStyle.Render("Error: "+st.Error) + dimStyle.Render("  r to retry")
	case st.IsLoadingMore:
		return m.spinner.View() + " Loading more..."
	case m.err != nil:
		return errorStyle.Render(m.err.Error())
	}

	status := printer.Sprintf("%d users", len(st.Items))
	if !st.HasMore && len(st.Items) > 0 {
		status += ", no more users"
	}
	return dimStyle.Render(status + "  / search  f role  s sort  r refresh  x reset  L logout  q quit")
}

// formatUser renders one row, truncated to width.
func formatUser(u portal.User, width int) string {
	created := u.CreatedAt
	if t, err := time.Parse(time.RFC3339, u.CreatedAt); err == nil {
		created = humanize.Time(t)
	}

	line := fmt.Sprintf("%-24.24s %-32.32s %-7.7s %s", u.Name, u.Email, u.Role, created)
	if width > 0 && len(line) > width {
		line = line[:width]
	}
	return line
}
