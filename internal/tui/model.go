// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"

	"github.com/apex/log"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/staranto/panctlgo/internal/feed"
	"github.com/staranto/panctlgo/internal/portal"
	"github.com/staranto/panctlgo/internal/scroll"
)

const (
	keyQuit   = "q"
	keyCtrlC  = "ctrl+c"
	keyEnter  = "enter"
	keyEsc    = "esc"
	keySlash  = "/"
	keyDown   = "down"
	keyUp     = "up"
	keyJ      = "j"
	keyK      = "k"
	keyTop    = "g"
	keyBottom = "G"
	keyPgUp   = "pgup"
	keyPgDown = "pgdown"
	keyRole   = "f"
	keySort   = "s"
	keyReload = "r"
	keyReset  = "x"
	keyLogout = "L"
)

const (
	defaultWidth  = 100
	defaultHeight = 24

	// Rows taken by the header, the search line and the footer.
	chromeRows = 4
)

// roles is the cycle the role filter walks through. The empty role means all.
var roles = []string{"", portal.RoleUser, portal.RoleAdmin, portal.RoleMaster}

// StateMsg carries a pager snapshot into the program.
type StateMsg struct {
	State scroll.State[portal.User]
}

// Option configures a Model.
type Option func(*Model)

// WithDispatch sets how the trigger runs a load. The default starts a
// goroutine, which keeps the fetch off the update loop.
func WithDispatch(dispatch func(func())) Option {
	return func(m *Model) {
		m.dispatch = dispatch
	}
}

// WithLogout sets what the logout key runs before quitting.
func WithLogout(logout func() error) Option {
	return func(m *Model) {
		m.logout = logout
	}
}

// Model is the bubbletea model of the users browser.
//
//nolint:recvcheck // bubbletea wants value receivers for Init/Update/View.
type Model struct {
	ctx   context.Context
	pager *scroll.Pager[portal.User]
	src   feed.UserLister
	query portal.UserQuery

	viewport *scroll.Viewport
	trigger  *scroll.Trigger
	dispatch func(func())
	logout   func() error

	spinner   spinner.Model
	search    textinput.Model
	searching bool

	state scroll.State[portal.User]

	// loaded gates the viewport until the pager's current query has finished
	// its initial load, so a scroll event cannot race the first fetch.
	loaded bool

	cursor int
	top    int
	width  int
	height int

	loggedOut bool
	err       error
}

// New returns a browser over pager, which must be keyed by
// feed.UsersKey(q) and fetch from src.
func New(ctx context.Context, pager *scroll.Pager[portal.User], src feed.UserLister, q portal.UserQuery, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "search name, email or mobile"
	ti.Prompt = "/ "
	ti.SetValue(q.Search)

	m := Model{
		ctx:      ctx,
		pager:    pager,
		src:      src,
		query:    q,
		viewport: scroll.NewViewport(),
		dispatch: func(f func()) { go f() },
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		search:   ti,
		state:    pager.State(),
		width:    defaultWidth,
		height:   defaultHeight,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.trigger = scroll.NewTrigger(ctx, pager, scroll.WithDispatch(m.dispatch))
	m.trigger.Observe(m.viewport)

	return m
}

// Init starts the spinner and the initial load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startCmd())
}

// Close stops observing the viewport.
func (m Model) Close() {
	m.trigger.Close()
}

// LoggedOut reports whether the browser was left through the logout key.
func (m Model) LoggedOut() bool {
	return m.loggedOut
}

// Err is the error of the last failed action such as logout.
func (m Model) Err() error {
	return m.err
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scrollIntoView()
		return m, m.observe()

	case StateMsg:
		return m.handleState(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchInput(msg)
		}
		return m.handleKeypress(msg)
	}

	return m, nil
}

func (m Model) handleState(msg StateMsg) (tea.Model, tea.Cmd) {
	// Snapshots of a query the browser has moved away from are ignored.
	if msg.State.Key != feed.UsersKey(m.query) {
		return m, nil
	}

	m.state = msg.State
	if !m.state.IsLoading && !m.state.Phase.Busy() {
		m.loaded = true
	}
	if n := len(m.state.Items); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.scrollIntoView()

	return m, m.observe()
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		m.searching = false
		m.search.Blur()
		m.query.Search = m.search.Value()
		return m.requery()
	case keyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue(m.query.Search)
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		return m, tea.Quit

	case keySlash:
		m.searching = true
		return m, m.search.Focus()

	case keyDown, keyJ:
		m.move(1)
	case keyUp, keyK:
		m.move(-1)
	case keyPgDown:
		m.move(m.listHeight())
	case keyPgUp:
		m.move(-m.listHeight())
	case keyTop:
		m.move(-len(m.state.Items))
	case keyBottom:
		m.move(len(m.state.Items))

	case keyRole:
		m.query.Role = nextRole(m.query.Role)
		return m.requery()

	case keySort:
		if m.query.Sort == portal.SortOldest {
			m.query.Sort = portal.SortNewest
		} else {
			m.query.Sort = portal.SortOldest
		}
		return m.requery()

	case keyReload:
		m.reset()
		return m, m.pagerCmd(m.pager.Refresh)

	case keyReset:
		m.reset()
		p := m.pager
		// Pager subscribers may send to the program, so the pager is never
		// driven from Update itself.
		return m, m.pagerCmd(func(ctx context.Context) {
			p.ResetCache()
			p.Start(ctx)
		})

	case keyLogout:
		if m.logout != nil {
			if err := m.logout(); err != nil {
				log.WithError(err).Error("logout failed")
				m.err = err
				return m, nil
			}
		}
		m.loggedOut = true
		return m, tea.Quit

	default:
		return m, nil
	}

	return m, m.observe()
}

// requery points the pager at the current query.
func (m Model) requery() (tea.Model, tea.Cmd) {
	m.reset()

	p, src, q := m.pager, m.src, m.query
	key := feed.UsersKey(q)
	log.WithField("key", key).Debug("browser query changed")

	return m, m.pagerCmd(func(ctx context.Context) {
		p.SetKey(ctx, key, feed.Users(src, q))
	})
}

// pagerCmd runs a blocking pager operation and reports the resulting state.
func (m Model) pagerCmd(op func(context.Context)) tea.Cmd {
	ctx, p := m.ctx, m.pager
	return func() tea.Msg {
		op(ctx)
		return StateMsg{State: p.State()}
	}
}

func (m Model) startCmd() tea.Cmd {
	return m.pagerCmd(m.pager.Start)
}

func (m *Model) reset() {
	m.loaded = false
	m.cursor = 0
	m.top = 0
	m.state.Items = nil
}

func (m *Model) move(delta int) {
	n := len(m.state.Items)
	if n == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	m.scrollIntoView()
}

func (m *Model) scrollIntoView() {
	h := m.listHeight()
	switch {
	case m.cursor < m.top:
		m.top = m.cursor
	case m.cursor >= m.top+h:
		m.top = m.cursor - h + 1
	}
	if m.top < 0 {
		m.top = 0
	}
}

// observe reports the window and the sentinel row below the last item to the
// viewport. When the trigger asked for more, the returned command picks up the
// new state.
func (m Model) observe() tea.Cmd {
	if !m.loaded {
		return nil
	}
	if !m.viewport.Update(m.top, m.listHeight(), len(m.state.Items), 1) {
		return nil
	}
	p := m.pager
	return func() tea.Msg {
		return StateMsg{State: p.State()}
	}
}

func (m Model) listHeight() int {
	return max(m.height-chromeRows, 1)
}

func nextRole(role string) string {
	for i, r := range roles {
		if r == role {
			return roles[(i+1)%len(roles)]
		}
	}
	return roles[0]
}
