// Package subscription keeps the set of live metric streams equal to the
// set of metrics the selected dashboard needs.
package subscription

import (
	"crypto/rand"
	"sort"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/tonhe/pulse/internal/health"
	"github.com/tonhe/pulse/internal/loop"
	"github.com/tonhe/pulse/internal/metric"
	"github.com/tonhe/pulse/internal/stream"
	"github.com/tonhe/pulse/internal/telemetry"
)

// Diff is the outcome of one reconciliation. Each list is sorted.
type Diff struct {
	Added   []string
	Kept    []string
	Removed []string
}

// Empty reports whether the reconciliation changed nothing.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Manager owns every Handle, keyed by metric id. It is not safe for
// concurrent use: all methods, and every closure it posts, run on the loop
// behind poster.
type Manager struct {
	opener  stream.Opener
	poster  loop.Poster
	store   *metric.Store
	health  *health.Aggregator
	rec     *telemetry.Recorder
	log     zerolog.Logger
	handles map[string]*Handle
}

// NewManager creates a Manager. rec may be nil.
func NewManager(opener stream.Opener, poster loop.Poster, store *metric.Store, agg *health.Aggregator, log zerolog.Logger, rec *telemetry.Recorder) *Manager {
	return &Manager{
		opener:  opener,
		poster:  poster,
		store:   store,
		health:  agg,
		rec:     rec,
		log:     log.With().Str("component", "subscription").Logger(),
		handles: make(map[string]*Handle),
	}
}

// Reconcile opens a handle for every required metric that has none and
// closes every handle whose metric is no longer required. Handles for
// metrics in both sets are not touched. Duplicates in required collapse.
func (m *Manager) Reconcile(required []string) Diff {
	want := make(map[string]struct{}, len(required))
	for _, id := range required {
		want[id] = struct{}{}
	}

	var d Diff
	for id := range m.handles {
		if _, ok := want[id]; ok {
			d.Kept = append(d.Kept, id)
		} else {
			d.Removed = append(d.Removed, id)
		}
	}
	for id := range want {
		if _, ok := m.handles[id]; !ok {
			d.Added = append(d.Added, id)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Kept)
	sort.Strings(d.Removed)

	for _, id := range d.Removed {
		m.remove(id)
		m.rec.Forget(id)
	}
	for _, id := range d.Added {
		m.handles[id] = m.open(id)
	}

	m.rec.Reconciled(len(d.Added), len(d.Kept), len(d.Removed))
	m.rec.SetActive(len(m.handles))
	if !d.Empty() {
		m.log.Info().
			Strs("added", d.Added).
			Strs("removed", d.Removed).
			Int("kept", len(d.Kept)).
			Msg("reconciled subscriptions")
	}
	return d
}

// Revive replaces every terminally closed handle with a new one and
// returns the affected metric ids.
func (m *Manager) Revive() []string {
	var ids []string
	for id, h := range m.handles {
		if h.state == StateClosed {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		m.remove(id)
		m.handles[id] = m.open(id)
	}
	if len(ids) > 0 {
		m.log.Info().Strs("metrics", ids).Msg("revived closed streams")
	}
	return ids
}

// CloseAll closes every handle.
func (m *Manager) CloseAll() {
	for id := range m.handles {
		m.remove(id)
		m.rec.Forget(id)
	}
	m.rec.SetActive(0)
}

// Handle returns the active handle for metricID.
func (m *Manager) Handle(metricID string) (*Handle, bool) {
	h, ok := m.handles[metricID]
	return h, ok
}

// Active returns the subscribed metric ids, sorted.
func (m *Manager) Active() []string {
	ids := make([]string, 0, len(m.handles))
	for id := range m.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of active handles in state s.
func (m *Manager) Count(s State) int {
	n := 0
	for _, h := range m.handles {
		if h.state == s {
			n++
		}
	}
	return n
}

// Len returns the number of active handles.
func (m *Manager) Len() int {
	return len(m.handles)
}

func (m *Manager) open(metricID string) *Handle {
	h := &Handle{
		ID:       ulid.MustNew(ulid.Now(), rand.Reader),
		MetricID: metricID,
		Origin:   m.opener.Origin(metricID),
		state:    StateConnecting,
		m:        m,
	}
	h.conn = m.opener.Open(metricID, listener{h: h})
	m.rec.Transition(StateConnecting.String())
	return h
}

func (m *Manager) remove(metricID string) {
	h, ok := m.handles[metricID]
	if !ok {
		return
	}
	delete(m.handles, metricID)
	h.close()
	m.health.Drop(h.Origin)
}
