package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetThemeByName(t *testing.T) {
	theme := GetThemeByName("solarized-dark")
	require.NotNil(t, theme)
	assert.Equal(t, "Solarized Dark", theme.Name)
	assert.Nil(t, GetThemeByName("nonexistent"))
}

func TestDefaultTheme(t *testing.T) {
	assert.Equal(t, "Solarized Dark", DefaultTheme.Name)
}

func TestResolve(t *testing.T) {
	theme, slug := Resolve("nord")
	assert.Equal(t, "Nord", theme.Name)
	assert.Equal(t, "nord", slug)

	theme, slug = Resolve("missing")
	assert.Equal(t, DefaultTheme, theme)
	assert.Equal(t, DefaultSlug, slug)
}

func TestListThemesSorted(t *testing.T) {
	themes := ListThemes()
	require.Len(t, themes, len(Themes))
	assert.IsIncreasing(t, themes)
}

func TestNextCycles(t *testing.T) {
	themes := ListThemes()
	assert.Equal(t, themes[1], Next(themes[0]))
	assert.Equal(t, themes[0], Next(themes[len(themes)-1]))
	assert.Equal(t, themes[0], Next("nope"))

	seen := map[string]bool{}
	slug := themes[0]
	for range themes {
		seen[slug] = true
		slug = Next(slug)
	}
	assert.Len(t, seen, len(themes))
}

func TestThemesArePopulated(t *testing.T) {
	for slug, th := range Themes {
		assert.NotEmpty(t, th.Name, slug)
		assert.NotEmpty(t, string(th.Base00), slug)
		assert.NotEmpty(t, string(th.Base0F), slug)
	}
}
