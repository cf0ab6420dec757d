package components

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/tonhe/pulse/internal/health"
	"github.com/tonhe/pulse/tui/styles"
)

// maxBannerLines caps how many health messages are listed before the rest
// are summarised.
const maxBannerLines = 3

// RenderHealthBanner renders one line per health message, danger first.
// It returns "" when there is nothing to report.
func RenderHealthBanner(sty *styles.Styles, msgs []health.Message, width int) string {
	if len(msgs) == 0 {
		return ""
	}
	var lines []string
	for i, m := range msgs {
		if i == maxBannerLines {
			rest := len(msgs) - maxBannerLines
			lines = append(lines, sty.BannerWarning.Width(width).
				Render(Truncate(plural(rest, "more stream")+" affected", width-2)))
			break
		}
		style := sty.BannerWarning
		if m.Severity == health.Danger {
			style = sty.BannerDanger
		}
		text := m.Text + "  (" + m.Origin + ")"
		lines = append(lines, style.Width(width).Render(Truncate(text, width-2)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
