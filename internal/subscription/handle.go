package subscription

import (
	"github.com/oklog/ulid/v2"

	"github.com/tonhe/pulse/internal/health"
	"github.com/tonhe/pulse/internal/metric"
	"github.com/tonhe/pulse/internal/stream"
)

// State is the lifecycle state of a Handle.
type State int

const (
	StateConnecting State = iota
	StateOpen
	StateRetrying
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateRetrying:
		return "retrying"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Event drives Handle state changes.
type Event int

const (
	// EventOpen: the transport is delivering values.
	EventOpen Event = iota
	// EventRecoverable: the transport failed and is reconnecting on its own.
	EventRecoverable
	// EventTerminal: the transport gave up.
	EventTerminal
	// EventClose: the owner released the handle.
	EventClose
)

// Transition returns the state that follows s on ev and whether ev
// changes anything. Closed is terminal: every event is ignored there.
func Transition(s State, ev Event) (State, bool) {
	if s == StateClosed {
		return s, false
	}
	var next State
	switch ev {
	case EventOpen:
		next = StateOpen
	case EventRecoverable:
		next = StateRetrying
	case EventTerminal, EventClose:
		next = StateClosed
	default:
		return s, false
	}
	return next, next != s
}

// Handle is one live subscription to a single metric. Handles are created
// and closed only by their Manager, and every method must be called on the
// Manager's event loop.
type Handle struct {
	ID       ulid.ULID
	MetricID string
	Origin   string

	state    State
	conn     stream.Conn
	released bool
	m        *Manager
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return h.state
}

// Conn returns the underlying transport connection.
func (h *Handle) Conn() stream.Conn {
	return h.conn
}

// close releases the connection exactly once. It raises no health message.
func (h *Handle) close() {
	if h.released {
		return
	}
	h.released = true
	h.state, _ = Transition(h.state, EventClose)
	if h.conn != nil {
		h.conn.Close()
	}
}

// fire applies ev and reports the resulting health transition.
func (h *Handle) fire(ev Event) {
	next, changed := Transition(h.state, ev)
	if !changed {
		return
	}
	prev := h.state
	h.state = next
	h.m.rec.Transition(next.String())
	h.m.log.Debug().
		Str("metric", h.MetricID).
		Str("from", prev.String()).
		Str("to", next.String()).
		Msg("stream state")

	switch next {
	case StateOpen:
		h.m.health.Apply(h.Origin, health.Opened)
	case StateRetrying:
		h.m.health.Apply(h.Origin, health.Unstable)
	case StateClosed:
		h.m.health.Apply(h.Origin, health.ClosedUnexpectedly)
	}
}

func (h *Handle) receive(data []byte) {
	if h.state == StateClosed {
		return
	}
	v, err := metric.ParseValue(data)
	if err != nil {
		h.m.rec.Dropped()
		h.m.log.Debug().Err(err).Str("metric", h.MetricID).Msg("dropping payload")
		return
	}
	h.m.rec.Message(h.MetricID)
	h.m.store.Set(h.MetricID, v)
}

// listener forwards transport callbacks onto the event loop.
type listener struct {
	h *Handle
}

func (l listener) OnOpen() {
	l.h.m.poster.Post(func() { l.h.fire(EventOpen) })
}

func (l listener) OnMessage(data []byte) {
	l.h.m.poster.Post(func() { l.h.receive(data) })
}

func (l listener) OnError(state stream.ReadyState) {
	ev := EventRecoverable
	if state == stream.Closed {
		ev = EventTerminal
	}
	l.h.m.poster.Post(func() { l.h.fire(ev) })
}
