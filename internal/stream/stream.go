// Package stream provides the live metric transports: one persistent,
// one-way connection per metric that reports its readiness and delivers raw
// value frames. Transports own reconnection; callers only observe state.
package stream

import (
	"errors"
	"fmt"
)

// ReadyState mirrors the readiness of a transport connection.
type ReadyState int

const (
	// Connecting means the transport is establishing or re-establishing
	// the connection.
	Connecting ReadyState = iota
	// Open means frames are being delivered.
	Open
	// Closed means the connection is gone for good.
	Closed
)

func (s ReadyState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Listener receives connection events. Calls come from the transport's own
// goroutine, never concurrently for the same connection.
type Listener interface {
	OnOpen()
	OnMessage(data []byte)
	// OnError reports a failure together with the state the transport is
	// left in: Connecting when it will retry, Closed when it gave up.
	OnError(state ReadyState)
}

// Conn is a live connection returned by an Opener.
type Conn interface {
	ReadyState() ReadyState
	// Close releases the connection. It is idempotent and never causes an
	// OnError callback.
	Close() error
}

// Opener opens one stream per metric. Open never blocks and never fails
// synchronously; failures are reported through the Listener.
type Opener interface {
	Open(metricID string, l Listener) Conn
	// Origin returns the stable connection target for metricID.
	Origin(metricID string) string
}

// ErrUnknownMetric is reported when a transport has no source for a metric.
var ErrUnknownMetric = errors.New("unknown metric")

// fatalError marks a failure the transport must not retry.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal wraps err so the connection closes instead of reconnecting.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err was marked with Fatal.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// ListenerFuncs adapts plain functions to the Listener interface. Nil
// fields are ignored.
type ListenerFuncs struct {
	Open    func()
	Message func(data []byte)
	Error   func(state ReadyState)
}

func (f ListenerFuncs) OnOpen() {
	if f.Open != nil {
		f.Open()
	}
}

func (f ListenerFuncs) OnMessage(data []byte) {
	if f.Message != nil {
		f.Message(data)
	}
}

func (f ListenerFuncs) OnError(state ReadyState) {
	if f.Error != nil {
		f.Error(state)
	}
}

func errStatus(code int, status string) error {
	return fmt.Errorf("unexpected status %d %s", code, status)
}
