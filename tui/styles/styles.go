package styles

import "github.com/charmbracelet/lipgloss"

// Styles holds all themed lipgloss styles for the application.
type Styles struct {
	// Header / Footer
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	Footer      lipgloss.Style
	FooterKey   lipgloss.Style
	FooterDesc  lipgloss.Style

	// Widget cards
	Card         lipgloss.Style
	CardTitle    lipgloss.Style
	CardSubtitle lipgloss.Style
	CardValue    lipgloss.Style
	CardPending  lipgloss.Style

	// Status colors
	StatusUp   lipgloss.Style
	StatusDown lipgloss.Style
	StatusWarn lipgloss.Style
	Dim        lipgloss.Style

	// Health banner
	BannerWarning lipgloss.Style
	BannerDanger  lipgloss.Style

	// Modal / overlay
	ModalBorder lipgloss.Style
	ModalTitle  lipgloss.Style
	ListItem    lipgloss.Style
	ListItemSel lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(theme Theme) *Styles {
	return &Styles{
		Header: lipgloss.NewStyle().
			Foreground(theme.Base05).
			Background(theme.Base01).
			Bold(true).
			Padding(0, 1),
		HeaderTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Background(theme.Base01).
			Bold(true),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Base04).
			Background(theme.Base01).
			Padding(0, 1),
		FooterKey: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Background(theme.Base01).
			Bold(true),
		FooterDesc: lipgloss.NewStyle().
			Foreground(theme.Base04).
			Background(theme.Base01),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Base02).
			Padding(0, 1),
		CardTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		CardSubtitle: lipgloss.NewStyle().
			Foreground(theme.Base04),
		CardValue: lipgloss.NewStyle().
			Foreground(theme.Base06).
			Bold(true),
		CardPending: lipgloss.NewStyle().
			Foreground(theme.Base03),

		StatusUp: lipgloss.NewStyle().
			Foreground(theme.Base0B),
		StatusDown: lipgloss.NewStyle().
			Foreground(theme.Base08),
		StatusWarn: lipgloss.NewStyle().
			Foreground(theme.Base0A),
		Dim: lipgloss.NewStyle().
			Foreground(theme.Base03),

		BannerWarning: lipgloss.NewStyle().
			Foreground(theme.Base00).
			Background(theme.Base0A).
			Padding(0, 1),
		BannerDanger: lipgloss.NewStyle().
			Foreground(theme.Base07).
			Background(theme.Base08).
			Bold(true).
			Padding(0, 1),

		ModalBorder: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Base0D).
			BorderBackground(theme.Base00).
			Background(theme.Base00).
			Padding(1, 2),
		ModalTitle: lipgloss.NewStyle().
			Foreground(theme.Base0D).
			Bold(true),
		ListItem: lipgloss.NewStyle().
			Foreground(theme.Base05),
		ListItemSel: lipgloss.NewStyle().
			Foreground(theme.Base06).
			Background(theme.Base02).
			Bold(true),
	}
}
