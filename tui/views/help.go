package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/pulse/tui/styles"
)

// helpSection is a titled group of key bindings.
type helpSection struct {
	title    string
	bindings [][2]string
}

var helpSections = []helpSection{
	{"Global", [][2]string{
		{"q / Ctrl+C", "Quit"},
		{"?", "Toggle this help"},
	}},
	{"Dashboard", [][2]string{
		{"Up / Down", "Scroll widget rows"},
		{"d", "Dashboard switcher"},
		{"r", "Reconnect closed streams"},
		{"t", "Next theme"},
	}},
	{"Dashboard Switcher", [][2]string{
		{"Enter", "Switch to dashboard"},
		{"Esc / d", "Close"},
	}},
}

// HelpView renders a modal overlay showing all keyboard shortcuts.
type HelpView struct {
	theme   styles.Theme
	sty     *styles.Styles
	width   int
	height  int
	visible bool
}

// NewHelpView creates a new HelpView with the given theme.
func NewHelpView(theme styles.Theme) HelpView {
	return HelpView{
		theme: theme,
		sty:   styles.NewStyles(theme),
	}
}

// SetTheme switches palettes.
func (v *HelpView) SetTheme(theme styles.Theme) {
	v.theme = theme
	v.sty = styles.NewStyles(theme)
}

// Toggle flips the help overlay visibility.
func (v *HelpView) Toggle() {
	v.visible = !v.visible
}

// IsVisible returns whether the help overlay is currently shown.
func (v HelpView) IsVisible() bool {
	return v.visible
}

// SetSize updates the available dimensions for the overlay.
func (v *HelpView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// View renders the help overlay as a centered modal box.
func (v HelpView) View() string {
	sectionStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0E).
		Bold(true)
	keyStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base0D).
		Bold(true)
	descStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base05)
	dimStyle := lipgloss.NewStyle().
		Foreground(v.theme.Base04)

	var lines []string
	lines = append(lines, v.sty.ModalTitle.Render("Keyboard Shortcuts"), "")
	for _, sec := range helpSections {
		lines = append(lines, sectionStyle.Render(sec.title))
		for _, b := range sec.bindings {
			lines = append(lines, fmt.Sprintf("  %s  %s",
				keyStyle.Render(fmt.Sprintf("%-12s", b[0])),
				descStyle.Render(b[1]),
			))
		}
		lines = append(lines, "")
	}
	lines = append(lines, dimStyle.Render("[?] close"))

	modal := v.sty.ModalBorder.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, modal)
}
