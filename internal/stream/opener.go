package stream

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tonhe/pulse/internal/config"
)

// NewOpener builds the transport named by cfg.Stream.Transport.
func NewOpener(cfg *config.Config, log zerolog.Logger) (Opener, error) {
	sc := cfg.Stream
	switch strings.ToLower(sc.Transport) {
	case config.TransportSSE, "":
		return NewSSEOpener(cfg.Server.URL, sc.Retry.Duration, sc.MaxRetries, log), nil
	case config.TransportWebSocket:
		return NewWebSocketOpener(cfg.Server.URL, sc.Retry.Duration, sc.MaxRetries, log), nil
	case config.TransportSNMP:
		return NewSNMPOpener(sc.SNMP, log), nil
	default:
		return nil, fmt.Errorf("unknown stream transport %q", sc.Transport)
	}
}
