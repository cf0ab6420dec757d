// Package dashboard describes dashboards and the catalogs that serve them.
package dashboard

import (
	"context"
	"errors"
	"sort"
)

// ErrNotFound is returned by a Catalog for an unknown dashboard id.
var ErrNotFound = errors.New("dashboard not found")

// DefaultLayout is the layout used when a dashboard names none.
const DefaultLayout = "default"

// Catalog lists dashboards and loads their definitions.
type Catalog interface {
	List(ctx context.Context) (map[string]Summary, error)
	Definition(ctx context.Context, id string) (*Definition, error)
}

// Summary identifies a dashboard without its definition.
type Summary struct {
	ID   string `json:"id" toml:"id" yaml:"id"`
	Name string `json:"name" toml:"name" yaml:"name"`
}

// Widget is one tile bound to a single metric.
type Widget struct {
	ID       string `json:"id" toml:"id" yaml:"id"`
	Title    string `json:"title" toml:"title" yaml:"title"`
	Subtitle string `json:"subtitle" toml:"subtitle" yaml:"subtitle"`
	Metric   string `json:"metric" toml:"metric" yaml:"metric"`
}

// Layout orders widgets into a grid.
type Layout struct {
	Columns int      `json:"columns" toml:"columns" yaml:"columns"`
	Order   []string `json:"order" toml:"order" yaml:"order"`
}

// Definition is the loaded content of a dashboard.
type Definition struct {
	Layouts map[string]Layout `json:"layouts" toml:"layouts" yaml:"layouts"`
	Widgets map[string]Widget `json:"widgets" toml:"widgets" yaml:"widgets"`
}

// Dashboard is a selectable dashboard. Definition is nil until loaded.
type Dashboard struct {
	ID         string
	Name       string
	Definition *Definition
}

// Resolved reports whether the definition has been loaded. Unresolved
// dashboards are neither rendered nor subscribed.
func (d *Dashboard) Resolved() bool {
	return d != nil && d.Definition != nil
}

// normalize fills widget ids from their map keys.
func (def *Definition) normalize() {
	for key, w := range def.Widgets {
		if w.ID == "" {
			w.ID = key
			def.Widgets[key] = w
		}
	}
}

// RequiredMetrics returns the distinct metric ids referenced by the
// widgets, sorted. Widgets without a metric are skipped.
func (def *Definition) RequiredMetrics() []string {
	if def == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(def.Widgets))
	ids := make([]string, 0, len(def.Widgets))
	for _, w := range def.Widgets {
		if w.Metric == "" {
			continue
		}
		if _, ok := seen[w.Metric]; ok {
			continue
		}
		seen[w.Metric] = struct{}{}
		ids = append(ids, w.Metric)
	}
	sort.Strings(ids)
	return ids
}

// Layout returns the named layout, falling back to DefaultLayout and then
// to the alphabetically first layout. A definition without layouts yields
// a single-column layout.
func (def *Definition) Layout(name string) Layout {
	if def == nil || len(def.Layouts) == 0 {
		return Layout{Columns: 1}
	}
	l, ok := def.Layouts[name]
	if !ok {
		l, ok = def.Layouts[DefaultLayout]
	}
	if !ok {
		names := make([]string, 0, len(def.Layouts))
		for n := range def.Layouts {
			names = append(names, n)
		}
		sort.Strings(names)
		l = def.Layouts[names[0]]
	}
	if l.Columns <= 0 {
		l.Columns = 1
	}
	return l
}

// OrderedWidgets returns the widgets in the order given by the layout.
// Widgets the layout does not mention follow, sorted by id; ids in the
// layout that name no widget are ignored.
func (def *Definition) OrderedWidgets(layout string) []Widget {
	if def == nil {
		return nil
	}
	out := make([]Widget, 0, len(def.Widgets))
	placed := make(map[string]bool, len(def.Widgets))
	for _, id := range def.Layout(layout).Order {
		w, ok := def.Widgets[id]
		if !ok || placed[id] {
			continue
		}
		placed[id] = true
		out = append(out, w)
	}
	rest := make([]string, 0, len(def.Widgets))
	for id := range def.Widgets {
		if !placed[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, def.Widgets[id])
	}
	return out
}

// SortedSummaries returns the summaries ordered by name, then id.
func SortedSummaries(m map[string]Summary) []Summary {
	out := make([]Summary, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}
