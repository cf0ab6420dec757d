package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/pulse/internal/dashboard"
	"github.com/tonhe/pulse/tui/keys"
	"github.com/tonhe/pulse/tui/styles"
)

// SwitcherAction describes what the app should do after a switcher key press.
type SwitcherAction int

const (
	// ActionNone means no action needed.
	ActionNone SwitcherAction = iota
	// ActionClose means the user wants to dismiss the switcher.
	ActionClose
	// ActionSwitch means the user selected a dashboard to switch to.
	ActionSwitch
)

// SwitcherItem represents a single dashboard entry in the switcher list.
type SwitcherItem struct {
	ID       string
	Name     string
	Active   bool
	Loading  bool
	Resolved bool
}

// SwitcherView is a modal overlay that lists dashboards and lets the user
// pick one.
type SwitcherView struct {
	theme  styles.Theme
	sty    *styles.Styles
	items  []SwitcherItem
	cursor int
	width  int
	height int
}

// NewSwitcherView creates a new SwitcherView with the given theme.
func NewSwitcherView(theme styles.Theme) SwitcherView {
	return SwitcherView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// SetTheme switches palettes.
func (v *SwitcherView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// SetItems rebuilds the list. The cursor starts on the active dashboard
// the first time the list is filled.
func (v *SwitcherView) SetItems(dashboards []*dashboard.Dashboard, selected, pending string) {
	first := len(v.items) == 0
	v.items = v.items[:0]
	for _, d := range dashboards {
		v.items = append(v.items, SwitcherItem{
			ID:       d.ID,
			Name:     d.Name,
			Active:   d.ID == selected,
			Loading:  d.ID == pending,
			Resolved: d.Resolved(),
		})
		if first && d.ID == selected {
			v.cursor = len(v.items) - 1
		}
	}

	if v.cursor >= len(v.items) {
		v.cursor = len(v.items) - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

// SetSize updates the available dimensions for the overlay.
func (v *SwitcherView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SelectedItem returns the currently highlighted item, or nil if the list is
// empty.
func (v *SwitcherView) SelectedItem() *SwitcherItem {
	if len(v.items) == 0 {
		return nil
	}
	return &v.items[v.cursor]
}

// Update handles key messages for the switcher overlay.
func (v SwitcherView) Update(msg tea.Msg) (SwitcherView, tea.Cmd, SwitcherAction) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.DefaultKeyMap.Escape), key.Matches(msg, keys.DefaultKeyMap.Dashboard):
			return v, nil, ActionClose

		case key.Matches(msg, keys.DefaultKeyMap.Up):
			if v.cursor > 0 {
				v.cursor--
			}
			return v, nil, ActionNone

		case key.Matches(msg, keys.DefaultKeyMap.Down):
			if v.cursor < len(v.items)-1 {
				v.cursor++
			}
			return v, nil, ActionNone

		case key.Matches(msg, keys.DefaultKeyMap.Enter):
			if len(v.items) > 0 {
				return v, nil, ActionSwitch
			}
			return v, nil, ActionNone
		}
	}
	return v, nil, ActionNone
}

// View renders the switcher as a centered modal box.
func (v SwitcherView) View() string {
	modalWidth := 44
	if v.width > 60 {
		modalWidth = v.width / 2
		if modalWidth > 60 {
			modalWidth = 60
		}
	}
	if modalWidth < 30 {
		modalWidth = 30
	}

	// Width covers padding but not the border.
	innerWidth := modalWidth - v.sty.ModalBorder.GetHorizontalBorderSize()
	rowWidth := innerWidth - v.sty.ModalBorder.GetHorizontalPadding()

	var lines []string
	if len(v.items) == 0 {
		dimStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)
		lines = append(lines, dimStyle.Render("No dashboards available."))
	} else {
		for i, item := range v.items {
			lines = append(lines, v.renderItem(item, i == v.cursor, rowWidth))
		}
	}

	helpStyle := lipgloss.NewStyle().Foreground(v.theme.Base04)
	helpKeyStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)
	help := fmt.Sprintf(
		"%s:switch  %s:close",
		helpKeyStyle.Render("enter"),
		helpKeyStyle.Render("esc"),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		strings.Join(lines, "\n"),
		"",
		helpStyle.Render(help),
	)

	// Render modal body without a top border
	noTopBorder := v.sty.ModalBorder.BorderTop(false)
	modalBody := noTopBorder.Width(innerWidth).Render(content)

	// Build top border manually with embedded title
	borderFg := lipgloss.NewStyle().Foreground(v.theme.Base0D).Background(v.theme.Base00)
	titleText := " Dashboards "
	titleRendered := v.sty.ModalTitle.Render(titleText)

	fullWidth := lipgloss.Width(modalBody)
	rightDashes := fullWidth - 2 - 1 - len(titleText)
	if rightDashes < 0 {
		rightDashes = 0
	}
	topBorder := borderFg.Render("╭─") + titleRendered + borderFg.Render(strings.Repeat("─", rightDashes)+"╮")

	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, topBorder+"\n"+modalBody)
}

// renderItem renders a single dashboard line: cursor, name, and a
// right-aligned status tag.
func (v SwitcherView) renderItem(item SwitcherItem, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}
	cursorStyle := lipgloss.NewStyle().Foreground(v.theme.Base0D).Bold(true)

	nameStyle := v.sty.ListItem
	if selected {
		nameStyle = v.sty.ListItemSel
	}

	var tag string
	var tagStyle lipgloss.Style
	switch {
	case item.Loading:
		tag, tagStyle = "loading", v.sty.StatusWarn
	case item.Active:
		tag, tagStyle = "* active", v.sty.StatusUp
	case item.Resolved:
		tag, tagStyle = "loaded", v.sty.Dim
	}

	name := item.Name
	if name == "" {
		name = item.ID
	}
	padLen := width - lipgloss.Width(cursor) - lipgloss.Width(name) - lipgloss.Width(tag)
	if padLen < 2 {
		padLen = 2
	}
	return cursorStyle.Render(cursor) + nameStyle.Render(name) + strings.Repeat(" ", padLen) + tagStyle.Render(tag)
}
