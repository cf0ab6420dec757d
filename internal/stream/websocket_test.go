package stream

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWSBase(t *testing.T) {
	assert.Equal(t, "ws://host:1", wsBase("http://host:1/"))
	assert.Equal(t, "wss://host", wsBase("https://host"))
	assert.Equal(t, "ws://already", wsBase("ws://already"))
}

func TestWebSocketMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/subscribe/cpu", r.URL.Path)
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		_ = ws.WriteMessage(websocket.TextMessage, []byte("1.5"))
		_ = ws.WriteMessage(websocket.BinaryMessage, []byte("2.5"))
		// Block until the client goes away.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	rec := newRecorder()
	c := NewWebSocketOpener(srv.URL, 10*time.Millisecond, 0, zerolog.Nop()).Open("cpu", rec)
	defer c.Close()

	events, msgs := rec.waitFor(t, func(_, msgs []string) bool { return len(msgs) == 2 })
	assert.Equal(t, "open", events[0])
	assert.Equal(t, []string{"1.5", "2.5"}, msgs)
	assert.Equal(t, Open, c.ReadyState())
}

func TestWebSocketAbnormalDropReconnects(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = ws.WriteMessage(websocket.TextMessage, []byte("3"))
		// Drop the TCP connection without a close frame.
		ws.Close()
	}))
	defer srv.Close()

	rec := newRecorder()
	c := NewWebSocketOpener(srv.URL, 10*time.Millisecond, 0, zerolog.Nop()).Open("m", rec)
	defer c.Close()

	events, _ := rec.waitFor(t, func(events, _ []string) bool {
		opens := 0
		for _, e := range events {
			if e == "open" {
				opens++
			}
		}
		return opens >= 2
	})
	assert.Contains(t, events, "error:connecting")
	assert.NotContains(t, events, "error:closed")
}

func TestWebSocketNormalCloseIsTerminal(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_, _, _ = ws.ReadMessage()
	}))
	defer srv.Close()

	rec := newRecorder()
	c := NewWebSocketOpener(srv.URL, 10*time.Millisecond, 0, zerolog.Nop()).Open("m", rec)

	events, _ := rec.waitFor(t, func(events, _ []string) bool { return contains(events, "error:closed") })
	assert.Equal(t, []string{"open", "error:closed"}, events)
	assert.Equal(t, Closed, c.ReadyState())
}

func TestWebSocketHandshakeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such metric", http.StatusNotFound)
	}))
	defer srv.Close()

	rec := newRecorder()
	NewWebSocketOpener(srv.URL, 10*time.Millisecond, 0, zerolog.Nop()).Open("m", rec)

	events, _ := rec.waitFor(t, func(events, _ []string) bool { return contains(events, "error:closed") })
	require.Equal(t, []string{"error:closed"}, events)
}
