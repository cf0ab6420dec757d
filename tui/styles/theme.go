package styles

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a Base16 palette. Base00 through Base07 run from background to
// brightest foreground; Base08 through Base0F are the accents (red, orange,
// yellow, green, cyan, blue, magenta, brown).
type Theme struct {
	Name   string
	Base00 lipgloss.Color
	Base01 lipgloss.Color
	Base02 lipgloss.Color
	Base03 lipgloss.Color
	Base04 lipgloss.Color
	Base05 lipgloss.Color
	Base06 lipgloss.Color
	Base07 lipgloss.Color
	Base08 lipgloss.Color
	Base09 lipgloss.Color
	Base0A lipgloss.Color
	Base0B lipgloss.Color
	Base0C lipgloss.Color
	Base0D lipgloss.Color
	Base0E lipgloss.Color
	Base0F lipgloss.Color
}

// DefaultSlug names the theme used when none is configured.
const DefaultSlug = "solarized-dark"

// DefaultTheme is the palette for DefaultSlug.
var DefaultTheme Theme

var slugs []string

func init() {
	slugs = make([]string, 0, len(Themes))
	for slug := range Themes {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	DefaultTheme = Themes[DefaultSlug]
}

// GetThemeByName returns a theme by its slug, or nil if not found.
func GetThemeByName(name string) *Theme {
	t, ok := Themes[name]
	if !ok {
		return nil
	}
	return &t
}

// Resolve returns the theme for slug and its canonical slug, falling back
// to the default for unknown names.
func Resolve(slug string) (Theme, string) {
	if t, ok := Themes[slug]; ok {
		return t, slug
	}
	return DefaultTheme, DefaultSlug
}

// ListThemes returns sorted theme slugs.
func ListThemes() []string {
	return slugs
}

// Next returns the slug after slug in sorted order, wrapping at the end.
// Unknown slugs start the cycle over.
func Next(slug string) string {
	i := sort.SearchStrings(slugs, slug)
	if i < len(slugs) && slugs[i] == slug {
		return slugs[(i+1)%len(slugs)]
	}
	return slugs[0]
}
