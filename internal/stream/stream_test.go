package stream

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is a Listener that records every callback for assertions.
type recorder struct {
	mu     sync.Mutex
	events []string
	msgs   []string
	signal chan struct{}
}

func newRecorder() *recorder {
	return &recorder{signal: make(chan struct{}, 64)}
}

func (r *recorder) OnOpen() { r.add("open", "") }

func (r *recorder) OnMessage(data []byte) { r.add("message", string(data)) }

func (r *recorder) OnError(state ReadyState) { r.add("error:"+state.String(), "") }

func (r *recorder) add(ev, msg string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	if ev == "message" {
		r.msgs = append(r.msgs, msg)
	}
	r.mu.Unlock()
	select {
	case r.signal <- struct{}{}:
	default:
	}
}

func (r *recorder) snapshot() ([]string, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...), append([]string(nil), r.msgs...)
}

// waitFor blocks until cond holds for the recorded events.
func (r *recorder) waitFor(t *testing.T, cond func(events, msgs []string) bool) ([]string, []string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		events, msgs := r.snapshot()
		if cond(events, msgs) {
			return events, msgs
		}
		select {
		case <-r.signal:
		case <-deadline:
			t.Fatalf("timed out; recorded events: %v", events)
		}
	}
}

func contains(events []string, want string) bool {
	for _, e := range events {
		if e == want {
			return true
		}
	}
	return false
}

func TestReadyStateString(t *testing.T) {
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "open", Open.String())
	assert.Equal(t, "closed", Closed.String())
}

func TestFatal(t *testing.T) {
	assert.Nil(t, Fatal(nil))

	base := errors.New("boom")
	err := Fatal(base)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsFatal(base))
}

func TestListenerFuncs(t *testing.T) {
	var got []string
	l := ListenerFuncs{
		Open:    func() { got = append(got, "open") },
		Message: func(b []byte) { got = append(got, string(b)) },
	}
	l.OnOpen()
	l.OnMessage([]byte("7"))
	l.OnError(Closed) // nil field is ignored

	require.Equal(t, []string{"open", "7"}, got)
}
