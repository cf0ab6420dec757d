package stream

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WebSocketOpener subscribes to {BaseURL}/subscribe/{metricID} over a
// websocket. An http(s) BaseURL is rewritten to ws(s).
type WebSocketOpener struct {
	BaseURL    string
	Dialer     *websocket.Dialer
	Retry      time.Duration
	MaxRetries int
	Logger     zerolog.Logger
}

// NewWebSocketOpener creates a WebSocketOpener with a default dialer.
func NewWebSocketOpener(baseURL string, retry time.Duration, maxRetries int, log zerolog.Logger) *WebSocketOpener {
	return &WebSocketOpener{
		BaseURL: wsBase(baseURL),
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		Retry:      retry,
		MaxRetries: maxRetries,
		Logger:     log,
	}
}

func wsBase(raw string) string {
	raw = strings.TrimRight(raw, "/")
	switch {
	case strings.HasPrefix(raw, "https://"):
		return "wss://" + strings.TrimPrefix(raw, "https://")
	case strings.HasPrefix(raw, "http://"):
		return "ws://" + strings.TrimPrefix(raw, "http://")
	}
	return raw
}

// Origin implements Opener.
func (o *WebSocketOpener) Origin(metricID string) string {
	return o.BaseURL + "/subscribe/" + url.PathEscape(metricID)
}

// Open implements Opener.
func (o *WebSocketOpener) Open(metricID string, l Listener) Conn {
	target := o.Origin(metricID)
	log := o.Logger.With().Str("transport", "websocket").Str("origin", target).Logger()
	return startConn(l, log, o.Retry, o.MaxRetries, func(ctx context.Context, h *hooks) error {
		return o.session(ctx, target, h)
	})
}

func (o *WebSocketOpener) session(ctx context.Context, target string, h *hooks) error {
	dialer := o.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	ws, resp, err := dialer.DialContext(ctx, target, nil)
	if err != nil {
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil && !retryableStatus(resp.StatusCode) {
			return Fatal(errStatus(resp.StatusCode, http.StatusText(resp.StatusCode)))
		}
		return err
	}
	defer ws.Close()

	// ReadMessage does not observe ctx; closing the socket unblocks it.
	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()

	h.opened()
	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.ClosePolicyViolation) {
				return Fatal(err)
			}
			return err
		}
		if msgType == websocket.TextMessage || msgType == websocket.BinaryMessage {
			h.deliver(data)
		}
	}
}
