package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/tonhe/pulse/internal/config"
)

// maxBodySize bounds a catalog response.
const maxBodySize = 4 << 20

// HTTPCatalog fetches dashboards from the metric server with
// GET {BaseURL}/dashboards and GET {BaseURL}/dashboards/{id}/definition.
// Requests go through a circuit breaker so an unreachable server fails fast.
type HTTPCatalog struct {
	BaseURL string
	Client  *http.Client

	breaker *gobreaker.CircuitBreaker[[]byte]
	log     zerolog.Logger
}

// NewHTTPCatalog creates an HTTPCatalog. Zero breaker settings fall back
// to 5 consecutive failures, a 30s open period and a 60s counting window.
func NewHTTPCatalog(baseURL string, timeout time.Duration, bc config.BreakerConfig, log zerolog.Logger) *HTTPCatalog {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxFailures := bc.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openFor := bc.Timeout.Duration
	if openFor == 0 {
		openFor = 30 * time.Second
	}
	interval := bc.Interval.Duration
	if interval == 0 {
		interval = 60 * time.Second
	}

	c := &HTTPCatalog{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "catalog").Logger(),
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state change")
		},
		// A missing dashboard says nothing about server health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
	})
	return c
}

// List implements Catalog.
func (c *HTTPCatalog) List(ctx context.Context) (map[string]Summary, error) {
	body, err := c.get(ctx, "/dashboards")
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	var out map[string]Summary
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("list dashboards: decode: %w", err)
	}
	for id, s := range out {
		if s.ID == "" {
			s.ID = id
		}
		if s.Name == "" {
			s.Name = s.ID
		}
		out[id] = s
	}
	if out == nil {
		out = map[string]Summary{}
	}
	return out, nil
}

// Definition implements Catalog.
func (c *HTTPCatalog) Definition(ctx context.Context, id string) (*Definition, error) {
	body, err := c.get(ctx, "/dashboards/"+url.PathEscape(id)+"/definition")
	if err != nil {
		return nil, fmt.Errorf("dashboard %s: %w", id, err)
	}
	var def Definition
	if err := json.Unmarshal(body, &def); err != nil {
		return nil, fmt.Errorf("dashboard %s: decode: %w", id, err)
	}
	def.normalize()
	return &def, nil
}

// State reports the breaker state.
func (c *HTTPCatalog) State() gobreaker.State {
	return c.breaker.State()
}

func (c *HTTPCatalog) get(ctx context.Context, path string) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.Client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return nil, err
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("unexpected status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		return body, nil
	})
}

// NewCatalog builds the catalog selected by cfg.Catalog.Source.
func NewCatalog(cfg *config.Config, log zerolog.Logger) (Catalog, error) {
	switch cfg.Catalog.Source {
	case config.SourceHTTP, "":
		return NewHTTPCatalog(cfg.Server.URL, cfg.Server.FetchTimeout.Duration, cfg.Breaker, log), nil
	case config.SourceDir:
		dir := cfg.Catalog.Dir
		if dir == "" {
			var err error
			if dir, err = config.GetDashboardsDir(); err != nil {
				return nil, err
			}
		}
		return NewDirCatalog(dir), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}
