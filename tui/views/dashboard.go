package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/pulse/internal/dashboard"
	"github.com/tonhe/pulse/internal/metric"
	"github.com/tonhe/pulse/tui/components"
	"github.com/tonhe/pulse/tui/keys"
	"github.com/tonhe/pulse/tui/styles"
)

// minCardWidth is the narrowest a widget card is drawn; the column count
// shrinks to respect it.
const minCardWidth = 20

// cardHeight is the rendered height of a card including its border.
const cardHeight = 5

// cachedCard is the last rendering of one widget.
type cachedCard struct {
	revision uint64
	width    int
	out      string
}

// cardCache keeps per-widget renderings so that a value change redraws
// only the widgets bound to that metric. It is shared by every copy of a
// DashboardView.
type cardCache struct {
	def     *dashboard.Definition
	cards   map[string]cachedCard
	renders int
}

// DashboardView draws the selected dashboard as a grid of widget cards.
type DashboardView struct {
	theme   styles.Theme
	sty     *styles.Styles
	dash    *dashboard.Dashboard
	store   *metric.Store
	cache   *cardCache
	loading bool
	width   int
	height  int
	offset  int // first visible card row
}

// NewDashboardView creates a new DashboardView with the given theme.
func NewDashboardView(theme styles.Theme, store *metric.Store) DashboardView {
	return DashboardView{
		theme: theme,
		sty:   styles.NewStyles(theme),
		store: store,
		cache: &cardCache{cards: make(map[string]cachedCard)},
	}
}

// SetTheme switches palettes. Every cached card is redrawn.
func (v *DashboardView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
	v.cache.cards = make(map[string]cachedCard)
}

// SetDashboard sets the dashboard to draw. A new definition discards the
// cached cards.
func (v *DashboardView) SetDashboard(d *dashboard.Dashboard) {
	v.dash = d
	var def *dashboard.Definition
	if d != nil {
		def = d.Definition
	}
	if def != v.cache.def {
		v.cache.def = def
		v.cache.cards = make(map[string]cachedCard)
		v.offset = 0
	}
}

// SetLoading marks whether the first dashboard is still loading.
func (v *DashboardView) SetLoading(loading bool) {
	v.loading = loading
}

// SetSize updates the available dimensions for the view.
func (v *DashboardView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Renders returns how many cards have been drawn since creation.
func (v DashboardView) Renders() int {
	return v.cache.renders
}

// Update handles key messages for scrolling the grid.
func (v DashboardView) Update(msg tea.Msg) (DashboardView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Up):
			if v.offset > 0 {
				v.offset--
			}
		case key.Matches(msg, keys.DefaultKeyMap.Down):
			if v.offset < v.rowCount()-v.visibleRows() {
				v.offset++
			}
		}
	}
	return v, nil
}

// View renders the dashboard view.
func (v DashboardView) View() string {
	if !v.dash.Resolved() {
		return v.renderEmpty()
	}
	widgets := v.dash.Definition.OrderedWidgets("")
	if len(widgets) == 0 {
		return v.renderMessage("This dashboard has no widgets")
	}

	cols, cardWidth := v.grid()
	var rows []string
	for start := 0; start < len(widgets); start += cols {
		end := start + cols
		if end > len(widgets) {
			end = len(widgets)
		}
		cards := make([]string, 0, cols)
		for _, w := range widgets[start:end] {
			cards = append(cards, v.card(w, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	first := v.offset
	if first > len(rows)-1 {
		first = len(rows) - 1
	}
	last := first + v.visibleRows()
	if last > len(rows) {
		last = len(rows)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows[first:last]...)
}

func (v DashboardView) grid() (cols, cardWidth int) {
	cols = v.dash.Definition.Layout("").Columns
	width := v.width
	if width <= 0 {
		width = 80
	}
	if maxCols := width / minCardWidth; cols > maxCols {
		cols = maxCols
	}
	if cols < 1 {
		cols = 1
	}
	return cols, width / cols
}

func (v DashboardView) rowCount() int {
	if !v.dash.Resolved() {
		return 0
	}
	cols, _ := v.grid()
	n := len(v.dash.Definition.Widgets)
	return (n + cols - 1) / cols
}

func (v DashboardView) visibleRows() int {
	rows := v.height / cardHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}

// card returns the rendering of w, reusing the cached one when neither
// the metric revision nor the width changed.
func (v DashboardView) card(w dashboard.Widget, width int) string {
	rev := v.store.Revision(w.Metric)
	if c, ok := v.cache.cards[w.ID]; ok && c.revision == rev && c.width == width {
		return c.out
	}
	out := v.renderCard(w, width)
	v.cache.cards[w.ID] = cachedCard{revision: rev, width: width, out: out}
	v.cache.renders++
	return out
}

func (v DashboardView) renderCard(w dashboard.Widget, width int) string {
	inner := width - 4 // border + padding
	if inner < 1 {
		inner = 1
	}
	title := w.Title
	if title == "" {
		title = w.ID
	}

	value, ok := v.store.Lookup(w.Metric)
	valueStyle := v.sty.CardValue
	if !ok {
		valueStyle = v.sty.CardPending
	}

	body := strings.Join([]string{
		v.sty.CardTitle.Render(components.Truncate(title, inner)),
		valueStyle.Render(components.Truncate(components.FormatValue(value, ok), inner)),
		v.sty.CardSubtitle.Render(components.Truncate(w.Subtitle, inner)),
	}, "\n")
	return v.sty.Card.Width(inner + 2).Render(body)
}

func (v DashboardView) renderEmpty() string {
	if v.loading {
		return v.renderMessage("Loading dashboard...")
	}
	keyStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)
	return v.renderMessage(fmt.Sprintf("No dashboard loaded. Press %s to pick one.", keyStyle.Render("[d]")))
}

func (v DashboardView) renderMessage(text string) string {
	msgStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04).
		Align(lipgloss.Center)
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, msgStyle.Render(text))
}
