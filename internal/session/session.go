// Package session owns the state behind one running dashboard view: the
// dashboard list, the selected dashboard, the metric store, stream health
// and the live subscriptions. Every method must be called on the event
// loop behind the configured Poster.
package session

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonhe/pulse/internal/dashboard"
	"github.com/tonhe/pulse/internal/health"
	"github.com/tonhe/pulse/internal/loop"
	"github.com/tonhe/pulse/internal/metric"
	"github.com/tonhe/pulse/internal/stream"
	"github.com/tonhe/pulse/internal/subscription"
	"github.com/tonhe/pulse/internal/telemetry"
)

// Phase is where the controller is in loading the selected dashboard.
type Phase int

const (
	PhaseUnselected Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseUnselected:
		return "unselected"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Options configures a Controller.
type Options struct {
	Catalog dashboard.Catalog
	Opener  stream.Opener
	Poster  loop.Poster
	Logger  zerolog.Logger
	// Recorder may be nil.
	Recorder *telemetry.Recorder
	// FetchTimeout bounds each catalog call. Zero means 10s.
	FetchTimeout time.Duration
	// InitialDashboard is selected by Start. Empty picks the first
	// dashboard by name.
	InitialDashboard string
}

// Controller sequences dashboard selection and drives reconciliation.
type Controller struct {
	catalog dashboard.Catalog
	poster  loop.Poster
	rec     *telemetry.Recorder
	log     zerolog.Logger
	timeout time.Duration
	initial string

	store  *metric.Store
	health *health.Aggregator
	subs   *subscription.Manager

	ctx    context.Context
	cancel context.CancelFunc

	dashboards map[string]*dashboard.Dashboard
	selected   string
	pending    string
	generation uint64
	phase      Phase
	ready      bool
	err        error

	listeners       []func()
	healthListeners []func()
}

// New creates a Controller. Nothing is fetched until Start or Select.
func New(opts Options) *Controller {
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		catalog:    opts.Catalog,
		poster:     opts.Poster,
		rec:        opts.Recorder,
		log:        opts.Logger.With().Str("component", "session").Logger(),
		timeout:    timeout,
		initial:    opts.InitialDashboard,
		store:      metric.NewStore(),
		health:     health.NewAggregator(),
		ctx:        ctx,
		cancel:     cancel,
		dashboards: make(map[string]*dashboard.Dashboard),
	}
	c.subs = subscription.NewManager(opts.Opener, opts.Poster, c.store, c.health, opts.Logger, opts.Recorder)
	c.health.OnChange(func() {
		c.rec.SetHealth(c.health.Count(health.Warning), c.health.Count(health.Danger))
		for _, fn := range c.healthListeners {
			fn()
		}
	})
	return c
}

// OnChange registers fn to run after the dashboard list, selection, phase
// or error changes.
func (c *Controller) OnChange(fn func()) {
	c.listeners = append(c.listeners, fn)
}

// OnHealthChange registers fn to run after the health message set changes.
func (c *Controller) OnHealthChange(fn func()) {
	c.healthListeners = append(c.healthListeners, fn)
}

// Start lists the dashboards and selects the initial one: the configured
// dashboard if it exists, otherwise the first by name.
func (c *Controller) Start() {
	c.list(true)
}

// Select loads dashboard id and, on success, makes it the selection and
// reconciles subscriptions against its metrics. Only the most recently
// issued selection is applied; results for earlier ones are discarded.
func (c *Controller) Select(id string) {
	c.generation++
	gen := c.generation
	c.pending = id
	c.phase = PhaseLoading
	c.notify()

	c.log.Debug().Str("dashboard", id).Uint64("generation", gen).Msg("selecting dashboard")
	go func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
		defer cancel()
		def, err := c.catalog.Definition(ctx, id)
		c.poster.Post(func() { c.apply(gen, id, def, err) })
	}()
}

// Refresh revives terminally closed streams. With no dashboard listed yet
// it retries Start; with dashboards listed but none selected it retries
// the initial selection.
func (c *Controller) Refresh() {
	switch {
	case len(c.dashboards) == 0 && c.selected == "":
		c.list(true)
	case c.selected == "" && c.pending == "":
		if id := c.pickInitial(); id != "" {
			c.Select(id)
		}
	default:
		c.subs.Revive()
	}
}

// Close cancels in-flight fetches and closes every stream.
func (c *Controller) Close() {
	c.cancel()
	c.generation++
	c.subs.CloseAll()
}

func (c *Controller) list(autoSelect bool) {
	go func() {
		ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
		defer cancel()
		summaries, err := c.catalog.List(ctx)
		c.poster.Post(func() { c.applyList(summaries, err, autoSelect) })
	}()
}

func (c *Controller) applyList(summaries map[string]dashboard.Summary, err error, autoSelect bool) {
	if c.ctx.Err() != nil {
		return
	}
	if err != nil {
		c.log.Error().Err(err).Msg("listing dashboards failed")
		c.err = err
		c.notify()
		return
	}
	for id, s := range summaries {
		d, ok := c.dashboards[id]
		if !ok {
			d = &dashboard.Dashboard{ID: id}
			c.dashboards[id] = d
		}
		d.Name = s.Name
	}
	c.err = nil
	c.log.Info().Int("count", len(summaries)).Msg("dashboards listed")
	c.notify()

	if !autoSelect || c.selected != "" || c.pending != "" {
		return
	}
	if id := c.pickInitial(); id != "" {
		c.Select(id)
	}
}

func (c *Controller) pickInitial() string {
	if _, ok := c.dashboards[c.initial]; ok {
		return c.initial
	}
	if c.initial != "" {
		c.log.Warn().Str("dashboard", c.initial).Msg("initial dashboard not found")
	}
	if list := c.Dashboards(); len(list) > 0 {
		return list[0].ID
	}
	return ""
}

func (c *Controller) apply(gen uint64, id string, def *dashboard.Definition, err error) {
	if gen != c.generation || c.ctx.Err() != nil {
		c.rec.SelectionDiscarded()
		c.log.Debug().Str("dashboard", id).Uint64("generation", gen).Msg("discarding stale selection")
		return
	}
	c.pending = ""

	if err != nil {
		c.log.Error().Err(err).Str("dashboard", id).Msg("loading dashboard failed")
		c.err = err
		if c.selected == "" {
			c.phase = PhaseUnselected
		} else {
			c.phase = PhaseReady
		}
		c.notify()
		return
	}

	d, ok := c.dashboards[id]
	if !ok {
		d = &dashboard.Dashboard{ID: id, Name: id}
		c.dashboards[id] = d
	}
	d.Definition = def
	c.selected = id
	c.phase = PhaseReady
	c.ready = true
	c.err = nil

	c.subs.Reconcile(def.RequiredMetrics())
	c.log.Info().Str("dashboard", id).Str("name", d.Name).Msg("dashboard selected")
	c.notify()
}

func (c *Controller) notify() {
	for _, fn := range c.listeners {
		fn()
	}
}

// Ready reports whether any dashboard has ever loaded. It never reverts.
func (c *Controller) Ready() bool { return c.ready }

func (c *Controller) Phase() Phase { return c.phase }

// Err returns the last catalog failure, cleared by the next success.
func (c *Controller) Err() error { return c.err }

// Pending returns the id of the selection being loaded, if any.
func (c *Controller) Pending() string { return c.pending }

// Selected returns the selected dashboard, or nil.
func (c *Controller) Selected() *dashboard.Dashboard {
	if c.selected == "" {
		return nil
	}
	return c.dashboards[c.selected]
}

// Dashboard returns a known dashboard by id.
func (c *Controller) Dashboard(id string) (*dashboard.Dashboard, bool) {
	d, ok := c.dashboards[id]
	return d, ok
}

// Dashboards returns the known dashboards ordered by name, then id.
func (c *Controller) Dashboards() []*dashboard.Dashboard {
	out := make([]*dashboard.Dashboard, 0, len(c.dashboards))
	for _, d := range c.dashboards {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Value returns the latest value for metricID and whether one arrived.
func (c *Controller) Value(metricID string) (float64, bool) {
	return c.store.Lookup(metricID)
}

func (c *Controller) Store() *metric.Store { return c.store }

func (c *Controller) Health() *health.Aggregator { return c.health }

func (c *Controller) Subscriptions() *subscription.Manager { return c.subs }
