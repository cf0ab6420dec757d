package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const opsTOML = `
name = "Ops"

[layouts.default]
columns = 2
order = ["w1", "w2"]

[widgets.w1]
title = "Live calls"
subtitle = "all regions"
metric = "live-calls"

[widgets.w2]
title = "Live calls"
subtitle = "copy"
metric = "live-calls"
`

const salesYAML = `
name: Sales
layouts:
  default:
    columns: 1
widgets:
  orders:
    title: Orders
    metric: orders-per-minute
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDashboardTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "d1.toml", opsTOML)

	d, err := LoadDashboard(filepath.Join(dir, "d1.toml"))
	require.NoError(t, err)
	assert.Equal(t, "d1", d.ID)
	assert.Equal(t, "Ops", d.Name)
	require.True(t, d.Resolved())
	assert.Equal(t, 2, d.Definition.Layout("").Columns)
	assert.Equal(t, "all regions", d.Definition.Widgets["w1"].Subtitle)
	assert.Equal(t, "w2", d.Definition.Widgets["w2"].ID)
	assert.Equal(t, []string{"live-calls"}, d.Definition.RequiredMetrics())
}

func TestLoadDashboardYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "sales.yaml", salesYAML)

	d, err := LoadDashboard(filepath.Join(dir, "sales.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Sales", d.Name)
	assert.Equal(t, "orders", d.Definition.Widgets["orders"].ID)
	assert.Equal(t, []string{"orders-per-minute"}, d.Definition.RequiredMetrics())
}

func TestLoadDashboardNameDefaultsToID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bare.toml", "[widgets.a]\nmetric = \"m\"\n")

	d, err := LoadDashboard(filepath.Join(dir, "bare.toml"))
	require.NoError(t, err)
	assert.Equal(t, "bare", d.Name)
}

func TestDirCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "d1.toml", opsTOML)
	writeFile(t, dir, "sales.yml", salesYAML)
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.toml"), 0o755))

	c := NewDirCatalog(dir)
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]Summary{
		"d1":    {ID: "d1", Name: "Ops"},
		"sales": {ID: "sales", Name: "Sales"},
	}, list)

	def, err := c.Definition(ctx, "sales")
	require.NoError(t, err)
	assert.Contains(t, def.Widgets, "orders")

	_, err = c.Definition(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Definition(ctx, "../d1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDirCatalogMissingDir(t *testing.T) {
	c := NewDirCatalog(filepath.Join(t.TempDir(), "absent"))
	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDirCatalogBadFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.toml", "name = [")

	c := NewDirCatalog(dir)
	_, err := c.List(context.Background())
	assert.Error(t, err)
	_, err = c.Definition(context.Background(), "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
