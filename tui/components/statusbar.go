package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/pulse/tui/styles"
)

// StatusInfo is what the status bar reports about the session.
type StatusInfo struct {
	Widgets    int
	Received   int
	Warnings   int
	Dangers    int
	LastUpdate time.Time
	Err        error
}

// RenderStatusBar renders the two-line status/footer bar showing value
// counts, health, the last error, and key bindings.
func RenderStatusBar(theme styles.Theme, info StatusInfo, width int) string {
	bg := theme.Base01
	bgStyle := lipgloss.NewStyle().Background(bg)
	sep := lipgloss.NewStyle().Foreground(theme.Base03).Background(bg).Render(" | ")

	widgetSeg := lipgloss.NewStyle().Foreground(theme.Base05).Background(bg).
		Render(fmt.Sprintf("%d/%d widgets live", info.Received, info.Widgets))
	lastStr := "never"
	if !info.LastUpdate.IsZero() {
		lastStr = info.LastUpdate.Format("15:04:05")
	}
	lastSeg := lipgloss.NewStyle().Foreground(theme.Base05).Background(bg).Render("last: " + lastStr)

	healthColor, healthText := theme.Base0B, "all streams OK"
	switch {
	case info.Dangers > 0:
		healthColor = theme.Base08
		healthText = fmt.Sprintf("%d closed, %d unstable", info.Dangers, info.Warnings)
	case info.Warnings > 0:
		healthColor = theme.Base0A
		healthText = fmt.Sprintf("%d unstable", info.Warnings)
	}
	healthSeg := lipgloss.NewStyle().Foreground(healthColor).Background(bg).Render(healthText)

	topContent := bgStyle.Render(" ") + widgetSeg + sep + lastSeg + sep + healthSeg
	if info.Err != nil {
		errSeg := lipgloss.NewStyle().Foreground(theme.Base08).Background(bg).
			Render(Truncate("error: "+info.Err.Error(), 60))
		topContent += sep + errSeg
	}
	topContent = padLine(bgStyle, topContent, width)

	keyStyle := lipgloss.NewStyle().Foreground(theme.Base0D).Background(bg).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(theme.Base04).Background(bg)
	spacer := bgStyle.Render("  ")

	keys := bgStyle.Render(" ") +
		keyStyle.Render("d") + descStyle.Render(":dashboards") + spacer +
		keyStyle.Render("r") + descStyle.Render(":refresh") + spacer +
		keyStyle.Render("?") + descStyle.Render(":help") + spacer +
		keyStyle.Render("q") + descStyle.Render(":quit")
	keys = padLine(bgStyle, keys, width)

	return lipgloss.JoinVertical(lipgloss.Left, topContent, keys)
}

func padLine(bg lipgloss.Style, line string, width int) string {
	if w := lipgloss.Width(line); w < width {
		line += bg.Render(strings.Repeat(" ", width-w))
	}
	return line
}
