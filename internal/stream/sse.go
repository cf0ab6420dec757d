package stream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxEventSize bounds a single SSE line.
const maxEventSize = 1 << 20

var errStreamEnded = errors.New("event stream ended")

// SSEOpener opens text/event-stream subscriptions at
// {BaseURL}/subscribe/{metricID}.
type SSEOpener struct {
	BaseURL    string
	Client     *http.Client
	Retry      time.Duration
	MaxRetries int
	Logger     zerolog.Logger
}

// NewSSEOpener creates an SSEOpener with a streaming-friendly HTTP client.
func NewSSEOpener(baseURL string, retry time.Duration, maxRetries int, log zerolog.Logger) *SSEOpener {
	return &SSEOpener{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Client:     NewStreamingClient(),
		Retry:      retry,
		MaxRetries: maxRetries,
		Logger:     log,
	}
}

// NewStreamingClient returns an http.Client without an overall timeout,
// since event streams are long-lived, but with bounded dial and header
// waits.
func NewStreamingClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			MaxIdleConnsPerHost:   32,
			IdleConnTimeout:       90 * time.Second,
			ForceAttemptHTTP2:     true,
		},
	}
}

// Origin implements Opener.
func (o *SSEOpener) Origin(metricID string) string {
	return o.BaseURL + "/subscribe/" + url.PathEscape(metricID)
}

// Open implements Opener.
func (o *SSEOpener) Open(metricID string, l Listener) Conn {
	target := o.Origin(metricID)
	log := o.Logger.With().Str("transport", "sse").Str("origin", target).Logger()
	var lastID string
	return startConn(l, log, o.Retry, o.MaxRetries, func(ctx context.Context, h *hooks) error {
		return o.session(ctx, target, &lastID, h)
	})
}

func (o *SSEOpener) session(ctx context.Context, target string, lastID *string, h *hooks) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Fatal(err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if *lastID != "" {
		req.Header.Set("Last-Event-ID", *lastID)
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := errStatus(resp.StatusCode, http.StatusText(resp.StatusCode))
		if retryableStatus(resp.StatusCode) {
			return err
		}
		return Fatal(err)
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType != "text/event-stream" {
		return Fatal(errors.New("unexpected content type " + strconv.Quote(resp.Header.Get("Content-Type"))))
	}

	h.opened()
	return readEvents(resp.Body, func(ev event) {
		if ev.hasID {
			*lastID = ev.id
		}
		if ev.retry > 0 {
			h.setRetry(ev.retry)
		}
		if ev.data != nil && (ev.typ == "" || ev.typ == "message") {
			h.deliver(ev.data)
		}
	})
}

// retryableStatus reports whether a non-200 response is worth reconnecting
// after. Everything else fails the stream permanently.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// event is one dispatched server-sent event. retry and id fields are
// reported even when the event carries no data.
type event struct {
	id    string
	hasID bool
	typ   string
	data  []byte
	retry time.Duration
}

// readEvents parses an event stream from r and calls fn for each
// dispatched event. It returns when r ends or fails; an event still being
// assembled at that point is discarded.
func readEvents(r io.Reader, fn func(event)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxEventSize)

	var (
		cur     event
		data    bytes.Buffer
		hasData bool
	)
	for scanner.Scan() {
		line := scanner.Bytes()

		if len(line) == 0 {
			if hasData {
				cur.data = bytes.TrimSuffix(append([]byte(nil), data.Bytes()...), []byte("\n"))
			}
			if hasData || cur.hasID || cur.retry > 0 {
				fn(cur)
			}
			cur = event{}
			data.Reset()
			hasData = false
			continue
		}
		if line[0] == ':' {
			continue
		}

		field, value := line, []byte(nil)
		if i := bytes.IndexByte(line, ':'); i >= 0 {
			field, value = line[:i], line[i+1:]
			value = bytes.TrimPrefix(value, []byte(" "))
		}

		switch string(field) {
		case "data":
			data.Write(value)
			data.WriteByte('\n')
			hasData = true
		case "event":
			cur.typ = string(value)
		case "id":
			if bytes.IndexByte(value, 0) < 0 {
				cur.id = string(value)
				cur.hasID = true
			}
		case "retry":
			if ms, err := strconv.Atoi(string(value)); err == nil && ms > 0 {
				cur.retry = time.Duration(ms) * time.Millisecond
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errStreamEnded
}
