package components

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/tonhe/pulse/internal/health"
	"github.com/tonhe/pulse/tui/styles"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    float64
		ok   bool
		want string
	}{
		{0, false, NoValue},
		{0, true, "0"},
		{42, true, "42"},
		{3.14159, true, "3.14"},
		{2.5, true, "2.5"},
		{-7, true, "-7"},
		{1500, true, "1.5k"},
		{999, true, "999"},
		{2_000_000, true, "2M"},
		{1_234_567_890, true, "1.23G"},
		{-0.001, true, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.v, tt.ok), "%v", tt.v)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel...", Truncate("hello world", 6))
	assert.Equal(t, "he", Truncate("hello", 2))
	assert.Equal(t, "", Truncate("hello", 0))
}

func TestRenderHealthBanner(t *testing.T) {
	sty := styles.NewStyles(styles.DefaultTheme)
	assert.Empty(t, RenderHealthBanner(sty, nil, 80))

	msgs := []health.Message{
		{Origin: "o1", Severity: health.Danger, Text: health.TextClosed},
		{Origin: "o2", Severity: health.Warning, Text: health.TextUnstable},
	}
	out := RenderHealthBanner(sty, msgs, 100)
	assert.Equal(t, 2, lipgloss.Height(out))
	assert.Contains(t, out, "o1")
	assert.Contains(t, out, health.TextUnstable)

	many := append(msgs,
		health.Message{Origin: "o3", Severity: health.Warning, Text: health.TextUnstable},
		health.Message{Origin: "o4", Severity: health.Warning, Text: health.TextUnstable},
		health.Message{Origin: "o5", Severity: health.Warning, Text: health.TextUnstable},
	)
	out = RenderHealthBanner(sty, many, 100)
	assert.Equal(t, maxBannerLines+1, lipgloss.Height(out))
	assert.Contains(t, out, "2 more streams affected")
}

func TestRenderHeader(t *testing.T) {
	theme := styles.DefaultTheme
	out := RenderHeader(theme, "Ops", false, 2, 3, 120, "1.0.0")
	assert.Contains(t, out, "Ops")
	assert.Contains(t, out, "DEGRADED")
	assert.Contains(t, out, "2/3 streams")

	assert.Contains(t, RenderHeader(theme, "", true, 0, 0, 120, "1.0.0"), "LOADING")
	assert.Contains(t, RenderHeader(theme, "Ops", false, 3, 3, 120, "1.0.0"), "LIVE")
}

func TestRenderStatusBar(t *testing.T) {
	out := RenderStatusBar(styles.DefaultTheme, StatusInfo{
		Widgets:  4,
		Received: 3,
		Warnings: 1,
		Err:      errors.New("boom"),
	}, 140)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, out, "3/4 widgets live")
	assert.Contains(t, out, "1 unstable")
	assert.Contains(t, out, "error: boom")
	assert.Contains(t, out, ":refresh")
}
