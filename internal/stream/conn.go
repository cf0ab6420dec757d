package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// hooks is what a session uses to report progress to its conn.
type hooks struct {
	opened   func()
	deliver  func(data []byte)
	setRetry func(d time.Duration)
}

// sessionFunc dials the transport once and streams frames until the
// connection ends. It calls opened after the connection is established. A
// fatal error closes the conn; any other return triggers a reconnect.
type sessionFunc func(ctx context.Context, h *hooks) error

// conn drives a sessionFunc with paced reconnection. It is shared by all
// transports.
type conn struct {
	listener   Listener
	log        zerolog.Logger
	limiter    *rate.Limiter
	maxRetries int

	mu        sync.Mutex
	state     ReadyState
	closed    bool
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// startConn launches the connection goroutine. Reconnect attempts are paced
// to at most one per retry interval; maxRetries consecutive failed attempts
// without an open in between close the conn (0 retries forever).
func startConn(l Listener, log zerolog.Logger, retry time.Duration, maxRetries int, session sessionFunc) *conn {
	if retry <= 0 {
		retry = 3 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{
		listener:   l,
		log:        log,
		limiter:    rate.NewLimiter(rate.Every(retry), 1),
		maxRetries: maxRetries,
		state:      Connecting,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go c.run(ctx, session)
	return c
}

func (c *conn) run(ctx context.Context, session sessionFunc) {
	defer close(c.done)

	failures := 0
	h := &hooks{
		opened: func() {
			if ctx.Err() != nil {
				return
			}
			failures = 0
			if !c.setState(Open) {
				return
			}
			c.log.Debug().Msg("stream open")
			c.listener.OnOpen()
		},
		deliver: func(data []byte) {
			if ctx.Err() != nil {
				return
			}
			c.listener.OnMessage(data)
		},
		setRetry: func(d time.Duration) {
			if d > 0 {
				c.limiter.SetLimit(rate.Every(d))
			}
		},
	}

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}
		err := session(ctx, h)
		if ctx.Err() != nil {
			return
		}
		if IsFatal(err) {
			c.fail(err)
			return
		}
		failures++
		if c.maxRetries > 0 && failures > c.maxRetries {
			c.fail(fmt.Errorf("giving up after %d attempts: %w", failures, err))
			return
		}
		if !c.setState(Connecting) {
			return
		}
		c.log.Warn().Err(err).Int("attempt", failures).Msg("stream interrupted, reconnecting")
		c.listener.OnError(Connecting)
	}
}

func (c *conn) fail(err error) {
	if !c.setState(Closed) {
		return
	}
	c.log.Error().Err(err).Msg("stream closed")
	c.listener.OnError(Closed)
}

// setState records s unless Close was called, in which case the caller
// must not report anything to the listener.
func (c *conn) setState(s ReadyState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.state = s
	return true
}

// ReadyState implements Conn.
func (c *conn) ReadyState() ReadyState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close implements Conn. It does not wait for the goroutine to exit.
func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.state = Closed
		c.mu.Unlock()
		c.cancel()
	})
	return nil
}

// Done is closed once the connection goroutine has exited.
func (c *conn) Done() <-chan struct{} {
	return c.done
}
