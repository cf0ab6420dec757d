package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const origin = "http://localhost:8080/subscribe/live-calls"

func TestOpenWithoutMessageIsNoop(t *testing.T) {
	a := NewAggregator()
	changes := 0
	a.OnChange(func() { changes++ })

	a.Apply(origin, Opened)
	assert.Zero(t, a.Len())
	assert.Zero(t, changes)
}

func TestUnstableThenOpenNetsToNothing(t *testing.T) {
	a := NewAggregator()

	a.Apply(origin, Unstable)
	m, ok := a.Get(origin)
	require.True(t, ok)
	assert.Equal(t, Warning, m.Severity)
	assert.Equal(t, TextUnstable, m.Text)

	a.Apply(origin, Opened)
	_, ok = a.Get(origin)
	assert.False(t, ok, "open must clear the warning")
	assert.Zero(t, a.Len())
}

func TestClosedOverwritesWarning(t *testing.T) {
	a := NewAggregator()
	a.Apply(origin, Unstable)
	a.Apply(origin, ClosedUnexpectedly)

	require.Equal(t, 1, a.Len(), "at most one message per origin")
	m, _ := a.Get(origin)
	assert.Equal(t, Danger, m.Severity)
	assert.Equal(t, TextClosed, m.Text)
}

func TestRepeatedTransitionDoesNotNotify(t *testing.T) {
	a := NewAggregator()
	changes := 0
	a.OnChange(func() { changes++ })

	a.Apply(origin, Unstable)
	a.Apply(origin, Unstable)
	assert.Equal(t, 1, changes)
}

func TestDrop(t *testing.T) {
	a := NewAggregator()
	a.Apply(origin, ClosedUnexpectedly)
	a.Drop(origin)
	assert.Zero(t, a.Len())

	// Dropping an unknown origin is harmless.
	a.Drop("ws://elsewhere")
	assert.Zero(t, a.Len())
}

func TestMessagesOrdering(t *testing.T) {
	a := NewAggregator()
	a.Apply("b", Unstable)
	a.Apply("c", ClosedUnexpectedly)
	a.Apply("a", Unstable)

	msgs := a.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "c", msgs[0].Origin, "danger sorts first")
	assert.Equal(t, "a", msgs[1].Origin)
	assert.Equal(t, "b", msgs[2].Origin)
	assert.Equal(t, 2, a.Count(Warning))
	assert.Equal(t, 1, a.Count(Danger))
}

func TestReduceNilMap(t *testing.T) {
	msgs, changed := Reduce(nil, origin, Unstable)
	assert.True(t, changed)
	assert.Len(t, msgs, 1)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "warning", Warning.String())
	assert.Equal(t, "danger", Danger.String())
}
