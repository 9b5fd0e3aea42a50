// Package tui is the terminal watch surface: a bubbletea program wrapped
// around the session controller, rendering each snapshot as it lands.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/poly-watch/pkg/polymarket"
	"github.com/poly-watch/pkg/render"
	"github.com/poly-watch/pkg/session"
)

type snapshotMsg struct{ snap *polymarket.Snapshot }
type errMsg struct{ err error }

type keyMap struct {
	Quit    key.Binding
	Refresh key.Binding
	Toggle  key.Binding
	Raw     key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh now")),
	Toggle:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop/start")),
	Raw:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "raw payload")),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	idleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type model struct {
	ctrl      *session.Controller
	addresses []string
	interval  time.Duration

	latest  *polymarket.Snapshot
	body    string
	lastErr string
	showRaw bool
	width   int
	height  int
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case snapshotMsg:
		m.latest = msg.snap
		m.lastErr = ""
		m.body = render.Render(msg.snap, render.Options{ShowRaw: m.showRaw})

	case errMsg:
		m.lastErr = msg.err.Error()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Refresh):
			m.ctrl.RefreshNow()
		case key.Matches(msg, keys.Toggle):
			if m.ctrl.IsActive() {
				m.ctrl.Stop()
				m.latest = nil
				m.body = ""
				m.lastErr = ""
			} else {
				m.ctrl.Start(m.addresses, m.interval)
			}
		case key.Matches(msg, keys.Raw):
			m.showRaw = !m.showRaw
			if m.latest != nil {
				m.body = render.Render(m.latest, render.Options{ShowRaw: m.showRaw})
			}
		}
	}
	return m, nil
}

func (m model) View() string {
	status := idleStyle.Render("IDLE")
	if m.ctrl.IsActive() {
		status = activeStyle.Render("ACTIVE · every " + m.ctrl.Interval().String())
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("POLY WATCH"),
		"  ", status,
		helpStyle.Render("  last updated: "+m.ctrl.LastUpdatedDisplay()),
	)

	view := header + "\n\n"
	if m.lastErr != "" {
		view += errStyle.Render("fetch error: "+m.lastErr) + "\n\n"
	}
	if m.body != "" {
		view += m.body + "\n"
	} else if m.ctrl.IsActive() {
		view += helpStyle.Render("waiting for first snapshot...") + "\n"
	}
	view += "\n" + helpStyle.Render("q quit · r refresh now · s stop/start · x raw payload")
	return view
}

// Run starts a monitoring session and blocks until the user quits. The
// active timer is cancelled on the way out.
func Run(fetch session.FetchFunc, addresses []string, interval time.Duration) error {
	var p *tea.Program
	ctrl := session.New(fetch,
		func(snap *polymarket.Snapshot) { p.Send(snapshotMsg{snap}) },
		func(err error) { p.Send(errMsg{err}) },
	)

	m := model{ctrl: ctrl, addresses: addresses, interval: interval}
	p = tea.NewProgram(m, tea.WithAltScreen())

	defer ctrl.Close()
	ctrl.Start(addresses, interval)

	_, err := p.Run()
	return err
}
