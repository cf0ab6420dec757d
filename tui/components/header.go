package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/pulse/tui/styles"
)

// RenderHeader renders the top header bar with app name, dashboard name,
// live/loading status, and the number of open streams.
func RenderHeader(theme styles.Theme, dashName string, loading bool, openStreams, totalStreams, width int, ver string) string {
	bg := lipgloss.NewStyle().Background(theme.Base01)

	left := lipgloss.NewStyle().
		Foreground(theme.Base0D).
		Background(theme.Base01).
		Bold(true).
		Render("pulse")

	displayName := dashName
	if displayName == "" {
		displayName = "(no dashboard)"
	}
	center := bg.Foreground(theme.Base05).Render(displayName)

	status, statusColor := "LIVE", theme.Base0B
	switch {
	case loading:
		status, statusColor = "LOADING", theme.Base0A
	case totalStreams == 0:
		status, statusColor = "IDLE", theme.Base03
	case openStreams < totalStreams:
		status, statusColor = "DEGRADED", theme.Base09
	}
	right := bg.Foreground(statusColor).Render(status)

	streams := bg.Foreground(theme.Base04).
		Render(fmt.Sprintf("%d/%d streams", openStreams, totalStreams))
	versionSeg := bg.Foreground(theme.Base04).Render("v" + ver)

	content := fmt.Sprintf(" %s  |  %s  |  %s  |  %s  |  %s ", left, center, right, streams, versionSeg)

	return bg.Width(width).Render(content)
}
