package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/pulse/internal/config"
	"github.com/tonhe/pulse/internal/health"
	"github.com/tonhe/pulse/internal/session"
	"github.com/tonhe/pulse/internal/subscription"
	"github.com/tonhe/pulse/tui/components"
	"github.com/tonhe/pulse/tui/keys"
	"github.com/tonhe/pulse/tui/styles"
	"github.com/tonhe/pulse/tui/views"
)

// AppState represents the current screen/view of the application.
type AppState int

const (
	StateDashboard AppState = iota
	StateSwitcher
)

// runMsg carries a closure posted from another goroutine. Update runs it,
// which makes the Bubble Tea program the session's event loop.
type runMsg func()

// Bridge implements loop.Poster on top of a tea.Program. Closures posted
// before Attach are held and delivered once the program is known.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
	pending []func()
}

// NewBridge creates a Bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach connects the bridge to p and flushes held closures.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(pending) > 0 {
		go func() {
			for _, fn := range pending {
				p.Send(runMsg(fn))
			}
		}()
	}
}

// Post implements loop.Poster.
func (b *Bridge) Post(fn func()) {
	b.mu.Lock()
	p := b.program
	if p == nil {
		b.pending = append(b.pending, fn)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	p.Send(runMsg(fn))
}

// liveStats is updated by store callbacks and shared by every copy of the
// model.
type liveStats struct {
	lastUpdate time.Time
}

// AppModel is the root Bubble Tea model that manages all views and state.
type AppModel struct {
	state     AppState
	themeSlug string
	theme     styles.Theme
	sty       *styles.Styles
	ctrl      *session.Controller
	stats     *liveStats
	dashboard views.DashboardView
	switcher  views.SwitcherView
	help      views.HelpView
	version   string
	width     int
	height    int
}

// NewAppModel creates a new AppModel over ctrl. The controller's poster
// must deliver closures to the program running this model.
func NewAppModel(cfg *config.Config, ctrl *session.Controller, version string) AppModel {
	theme, slug := styles.Resolve(cfg.Theme)

	stats := &liveStats{}
	ctrl.Store().OnChange(func(string) { stats.lastUpdate = time.Now() })

	return AppModel{
		state:     StateDashboard,
		themeSlug: slug,
		theme:     theme,
		sty:       styles.NewStyles(theme),
		ctrl:      ctrl,
		stats:     stats,
		dashboard: views.NewDashboardView(theme, ctrl.Store()),
		switcher:  views.NewSwitcherView(theme),
		help:      views.NewHelpView(theme),
		version:   version,
	}
}

// Init starts the session on the program's loop.
func (m AppModel) Init() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg { return runMsg(ctrl.Start) }
}

// Update handles messages and dispatches to the active view.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg()
		m.sync()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.switcher.SetSize(msg.Width, msg.Height)
		m.help.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.DefaultKeyMap.Quit) {
			m.ctrl.Close()
			return m, tea.Quit
		}
		if m.help.IsVisible() {
			if key.Matches(msg, keys.DefaultKeyMap.Help) || key.Matches(msg, keys.DefaultKeyMap.Escape) {
				m.help.Toggle()
			}
			return m, nil
		}

		switch m.state {
		case StateDashboard:
			switch {
			case key.Matches(msg, keys.DefaultKeyMap.Help):
				m.help.Toggle()
				return m, nil
			case key.Matches(msg, keys.DefaultKeyMap.Dashboard):
				m.state = StateSwitcher
				m.sync()
				return m, nil
			case key.Matches(msg, keys.DefaultKeyMap.Refresh):
				m.ctrl.Refresh()
				return m, nil
			case key.Matches(msg, keys.DefaultKeyMap.Theme):
				m.setTheme(styles.Next(m.themeSlug))
				return m, nil
			}
			var cmd tea.Cmd
			m.dashboard, cmd = m.dashboard.Update(msg)
			return m, cmd

		case StateSwitcher:
			var cmd tea.Cmd
			var action views.SwitcherAction
			m.switcher, cmd, action = m.switcher.Update(msg)
			switch action {
			case views.ActionClose:
				m.state = StateDashboard
			case views.ActionSwitch:
				if item := m.switcher.SelectedItem(); item != nil && !item.Active {
					m.ctrl.Select(item.ID)
				}
				m.state = StateDashboard
				m.sync()
			}
			return m, cmd
		}
	}
	return m, nil
}

// setTheme switches every view to the theme named slug.
func (m *AppModel) setTheme(slug string) {
	m.theme, m.themeSlug = styles.Resolve(slug)
	m.sty = styles.NewStyles(m.theme)
	m.dashboard.SetTheme(m.theme)
	m.switcher.SetTheme(m.theme)
	m.help.SetTheme(m.theme)
}

// sync copies session state into the views.
func (m *AppModel) sync() {
	m.dashboard.SetDashboard(m.ctrl.Selected())
	m.dashboard.SetLoading(!m.ctrl.Ready())
	if m.state == StateSwitcher {
		selected := ""
		if d := m.ctrl.Selected(); d != nil {
			selected = d.ID
		}
		m.switcher.SetItems(m.ctrl.Dashboards(), selected, m.ctrl.Pending())
	}
}

// View renders the full application UI by composing header, health
// banner, body, and status bar.
func (m AppModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	subs := m.ctrl.Subscriptions()
	name := ""
	if d := m.ctrl.Selected(); d != nil {
		name = d.Name
	}
	header := components.RenderHeader(
		m.theme,
		name,
		m.ctrl.Phase() == session.PhaseLoading,
		subs.Count(subscription.StateOpen),
		subs.Len(),
		m.width,
		m.version,
	)
	banner := components.RenderHealthBanner(m.sty, m.ctrl.Health().Messages(), m.width)
	status := components.RenderStatusBar(m.theme, m.statusInfo(), m.width)

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(status)
	if banner != "" {
		bodyHeight -= lipgloss.Height(banner)
	}
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch {
	case m.help.IsVisible():
		body = m.help.View()
	case m.state == StateSwitcher:
		sw := m.switcher
		sw.SetSize(m.width, bodyHeight)
		body = sw.View()
	default:
		dv := m.dashboard
		dv.SetSize(m.width, bodyHeight)
		body = dv.View()
	}
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	parts := []string{header}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, body, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m AppModel) statusInfo() components.StatusInfo {
	agg := m.ctrl.Health()
	info := components.StatusInfo{
		Warnings:   agg.Count(health.Warning),
		Dangers:    agg.Count(health.Danger),
		LastUpdate: m.stats.lastUpdate,
		Err:        m.ctrl.Err(),
	}
	if d := m.ctrl.Selected(); d.Resolved() {
		for _, w := range d.Definition.Widgets {
			info.Widgets++
			if _, ok := m.ctrl.Value(w.Metric); ok {
				info.Received++
			}
		}
	}
	return info
}
