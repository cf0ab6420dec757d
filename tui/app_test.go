package tui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonhe/pulse/internal/config"
	"github.com/tonhe/pulse/internal/dashboard"
	"github.com/tonhe/pulse/internal/session"
	"github.com/tonhe/pulse/internal/stream"
	"github.com/tonhe/pulse/tui/styles"
)

type staticCatalog struct{}

func (staticCatalog) List(context.Context) (map[string]dashboard.Summary, error) {
	return map[string]dashboard.Summary{
		"d1": {ID: "d1", Name: "Ops"},
		"d2": {ID: "d2", Name: "Sales"},
	}, nil
}

func (staticCatalog) Definition(_ context.Context, id string) (*dashboard.Definition, error) {
	return &dashboard.Definition{Widgets: map[string]dashboard.Widget{
		"w": {ID: "w", Title: "Widget " + id, Metric: id + "-metric"},
	}}, nil
}

type nopConn struct{}

func (nopConn) ReadyState() stream.ReadyState { return stream.Connecting }
func (nopConn) Close() error                  { return nil }

type nopOpener struct{}

func (nopOpener) Open(string, stream.Listener) stream.Conn { return nopConn{} }
func (nopOpener) Origin(id string) string                  { return "test://" + id }

// queue is a Poster that the test drains by feeding runMsgs to Update, the
// way the Bridge does in a running program.
type queue struct {
	mu   sync.Mutex
	fns  []func()
	cond *sync.Cond
}

func newQueue() *queue {
	q := &queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *queue) Post(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// next blocks until a closure is posted.
func (q *queue) next() func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.fns) == 0 {
		q.cond.Wait()
	}
	fn := q.fns[0]
	q.fns = q.fns[1:]
	return fn
}

func newTestModel(t *testing.T) (AppModel, *queue) {
	t.Helper()
	q := newQueue()
	ctrl := session.New(session.Options{
		Catalog: staticCatalog{},
		Opener:  nopOpener{},
		Poster:  q,
		Logger:  zerolog.Nop(),
	})
	m := NewAppModel(config.DefaultConfig(), ctrl, "test")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(AppModel), q
}

func step(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(AppModel)
}

func TestAppStartsAndSelectsFirstDashboard(t *testing.T) {
	m, q := newTestModel(t)

	start := m.Init()()
	// Start, then the dashboard list, then the definition of d1.
	m = step(t, m, start)
	m = step(t, m, runMsg(q.next()))
	m = step(t, m, runMsg(q.next()))

	require.True(t, m.ctrl.Ready())
	out := m.View()
	assert.Contains(t, out, "Ops")
	assert.Contains(t, out, "Widget d1")
	assert.Equal(t, []string{"d1-metric"}, m.ctrl.Subscriptions().Active())
}

func TestAppSwitchDashboard(t *testing.T) {
	m, q := newTestModel(t)
	m = step(t, m, m.Init()())
	m = step(t, m, runMsg(q.next()))
	m = step(t, m, runMsg(q.next()))

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.Equal(t, StateSwitcher, m.state)
	assert.Contains(t, m.View(), "Dashboards")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, StateDashboard, m.state)
	assert.Equal(t, "d2", m.ctrl.Pending())
	assert.Contains(t, m.View(), "LOADING")

	m = step(t, m, runMsg(q.next()))
	assert.Equal(t, "d2", m.ctrl.Selected().ID)
	assert.Equal(t, []string{"d2-metric"}, m.ctrl.Subscriptions().Active())
}

func TestAppHelpAndQuit(t *testing.T) {
	m, _ := newTestModel(t)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	assert.True(t, m.help.IsVisible())
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.help.IsVisible())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAppCyclesTheme(t *testing.T) {
	m, _ := newTestModel(t)
	require.Equal(t, styles.DefaultSlug, m.themeSlug)

	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	want := styles.Next(styles.DefaultSlug)
	assert.Equal(t, want, m.themeSlug)
	assert.Equal(t, styles.Themes[want].Name, m.theme.Name)
}

func TestBridgeHoldsUntilAttached(t *testing.T) {
	b := NewBridge()
	b.Post(func() {})
	b.Post(func() {})
	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Len(t, b.pending, 2)
}
