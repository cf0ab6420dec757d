package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opsDefinition() *Definition {
	return &Definition{
		Layouts: map[string]Layout{
			DefaultLayout: {Columns: 2, Order: []string{"w2", "missing", "w1"}},
		},
		Widgets: map[string]Widget{
			"w1": {ID: "w1", Title: "Live calls", Metric: "live-calls"},
			"w2": {ID: "w2", Title: "Live calls (copy)", Metric: "live-calls"},
			"w3": {ID: "w3", Title: "Queue", Metric: "queue-depth"},
			"w4": {ID: "w4", Title: "Label only"},
		},
	}
}

func TestRequiredMetricsCollapsesDuplicates(t *testing.T) {
	def := &Definition{Widgets: map[string]Widget{
		"w1": {Metric: "live-calls"},
		"w2": {Metric: "live-calls"},
	}}
	assert.Equal(t, []string{"live-calls"}, def.RequiredMetrics())

	assert.Equal(t, []string{"live-calls", "queue-depth"}, opsDefinition().RequiredMetrics())

	var none *Definition
	assert.Empty(t, none.RequiredMetrics())
}

func TestOrderedWidgets(t *testing.T) {
	got := opsDefinition().OrderedWidgets("")
	ids := make([]string, len(got))
	for i, w := range got {
		ids[i] = w.ID
	}
	assert.Equal(t, []string{"w2", "w1", "w3", "w4"}, ids)
}

func TestLayoutFallbacks(t *testing.T) {
	def := opsDefinition()
	assert.Equal(t, 2, def.Layout("wide").Columns, "unknown layout falls back to default")

	def.Layouts = map[string]Layout{"b": {Columns: 4}, "a": {}}
	assert.Equal(t, 1, def.Layout("").Columns, "first layout by name, columns at least 1")

	def.Layouts = nil
	assert.Equal(t, Layout{Columns: 1}, def.Layout(""))
}

func TestResolved(t *testing.T) {
	var d *Dashboard
	assert.False(t, d.Resolved())
	d = &Dashboard{ID: "d1", Name: "Ops"}
	assert.False(t, d.Resolved())
	d.Definition = opsDefinition()
	assert.True(t, d.Resolved())
}

func TestNormalizeFillsWidgetIDs(t *testing.T) {
	def := &Definition{Widgets: map[string]Widget{"w1": {Metric: "m"}}}
	def.normalize()
	require.Contains(t, def.Widgets, "w1")
	assert.Equal(t, "w1", def.Widgets["w1"].ID)
}

func TestSortedSummaries(t *testing.T) {
	got := SortedSummaries(map[string]Summary{
		"b": {ID: "b", Name: "Sales"},
		"a": {ID: "a", Name: "Ops"},
		"c": {ID: "c", Name: "Ops"},
	})
	assert.Equal(t, []Summary{{"a", "Ops"}, {"c", "Ops"}, {"b", "Sales"}}, got)
}
