package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonhe/pulse/internal/config"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/dashboards", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"d1":{"id":"d1","name":"Ops"},"d2":{"name":"Sales"}}`))
	})
	mux.HandleFunc("/dashboards/d1/definition", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"layouts": {"default": {"columns": 3}},
			"widgets": {
				"w1": {"id": "w1", "title": "Calls", "metric": "live-calls"},
				"w2": {"title": "Calls again", "metric": "live-calls"}
			}
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPCatalogList(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewHTTPCatalog(srv.URL, time.Second, config.BreakerConfig{}, zerolog.Nop())

	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]Summary{
		"d1": {ID: "d1", Name: "Ops"},
		"d2": {ID: "d2", Name: "Sales"},
	}, list)
}

func TestHTTPCatalogDefinition(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewHTTPCatalog(srv.URL+"/", time.Second, config.BreakerConfig{}, zerolog.Nop())

	def, err := c.Definition(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, 3, def.Layout("").Columns)
	assert.Equal(t, "w2", def.Widgets["w2"].ID)
	assert.Equal(t, []string{"live-calls"}, def.RequiredMetrics())
}

func TestHTTPCatalogNotFoundDoesNotTrip(t *testing.T) {
	srv := newCatalogServer(t)
	c := NewHTTPCatalog(srv.URL, time.Second, config.BreakerConfig{MaxFailures: 1}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := c.Definition(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, gobreaker.StateClosed, c.State())
}

func TestHTTPCatalogBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPCatalog(srv.URL, time.Second, config.BreakerConfig{
		MaxFailures: 2,
		Timeout:     config.Duration{Duration: time.Hour},
	}, zerolog.Nop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := c.List(ctx)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, c.State())

	_, err := c.List(ctx)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load(), "open breaker does not reach the server")
}

func TestHTTPCatalogBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewHTTPCatalog(srv.URL, time.Second, config.BreakerConfig{}, zerolog.Nop())
	_, err := c.Definition(context.Background(), "d1")
	assert.Error(t, err)
}

func TestNewCatalog(t *testing.T) {
	cfg := config.DefaultConfig()

	cat, err := NewCatalog(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &HTTPCatalog{}, cat)

	cfg.Catalog = config.CatalogConfig{Source: config.SourceDir, Dir: t.TempDir()}
	cat, err = NewCatalog(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &DirCatalog{}, cat)

	cfg.Catalog.Source = "ftp"
	_, err = NewCatalog(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestHTTPCatalogDefinitionPath(t *testing.T) {
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.EscapedPath())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"widgets": {}}`))
	}))
	defer srv.Close()

	c := NewHTTPCatalog(srv.URL, time.Second, config.BreakerConfig{}, zerolog.Nop())
	_, err := c.Definition(context.Background(), "sales eu")
	require.NoError(t, err)
	assert.Equal(t, "/dashboards/sales%20eu/definition", path.Load())
}
