// Package health turns stream state transitions into user-facing
// connectivity messages, one per stream origin.
package health

import "sort"

// Severity is how loudly a message should be shown.
type Severity int

const (
	Warning Severity = iota
	Danger
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	default:
		return "unknown"
	}
}

// Transition is a connection-state change reported for an origin.
type Transition int

const (
	// Opened means the origin's stream is (again) delivering values.
	Opened Transition = iota
	// Unstable means the transport hit a recoverable error and is reconnecting.
	Unstable
	// ClosedUnexpectedly means the transport gave up; the user must refresh.
	ClosedUnexpectedly
)

// Message texts shown to the user.
const (
	TextUnstable = "Connection unstable; live values may be delayed"
	TextClosed   = "Connection unexpectedly closed; refresh to reconnect"
)

// Message is a connectivity notice for one stream origin.
type Message struct {
	Origin   string
	Severity Severity
	Text     string
}

// Aggregator holds at most one Message per origin. It is not safe for
// concurrent use; it is owned by the session event loop.
type Aggregator struct {
	messages map[string]Message
	onChange func()
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{messages: make(map[string]Message)}
}

// OnChange registers fn to be called whenever the message set changes.
func (a *Aggregator) OnChange(fn func()) {
	a.onChange = fn
}

// Apply folds one transition for origin into the message set.
func (a *Aggregator) Apply(origin string, t Transition) {
	var changed bool
	a.messages, changed = Reduce(a.messages, origin, t)
	if changed {
		a.notify()
	}
}

// Drop removes the message for an origin that no longer exists.
func (a *Aggregator) Drop(origin string) {
	if _, ok := a.messages[origin]; !ok {
		return
	}
	delete(a.messages, origin)
	a.notify()
}

// Get returns the message for origin, if any.
func (a *Aggregator) Get(origin string) (Message, bool) {
	m, ok := a.messages[origin]
	return m, ok
}

// Len returns the number of active messages.
func (a *Aggregator) Len() int {
	return len(a.messages)
}

// Count returns the number of active messages with the given severity.
func (a *Aggregator) Count(sev Severity) int {
	n := 0
	for _, m := range a.messages {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

// Messages returns all active messages, danger first, then by origin.
func (a *Aggregator) Messages() []Message {
	out := make([]Message, 0, len(a.messages))
	for _, m := range a.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].Origin < out[j].Origin
	})
	return out
}

func (a *Aggregator) notify() {
	if a.onChange != nil {
		a.onChange()
	}
}

// Reduce applies transition t for origin to msgs and reports whether the
// set changed. msgs is modified in place and returned.
func Reduce(msgs map[string]Message, origin string, t Transition) (map[string]Message, bool) {
	if msgs == nil {
		msgs = make(map[string]Message)
	}
	prev, had := msgs[origin]

	switch t {
	case Opened:
		if !had {
			return msgs, false
		}
		delete(msgs, origin)
		return msgs, true
	case Unstable:
		next := Message{Origin: origin, Severity: Warning, Text: TextUnstable}
		msgs[origin] = next
		return msgs, !had || prev != next
	case ClosedUnexpectedly:
		next := Message{Origin: origin, Severity: Danger, Text: TextClosed}
		msgs[origin] = next
		return msgs, !had || prev != next
	}
	return msgs, false
}
