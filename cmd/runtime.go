package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tonhe/pulse/internal/config"
	"github.com/tonhe/pulse/internal/dashboard"
	"github.com/tonhe/pulse/internal/loop"
	"github.com/tonhe/pulse/internal/session"
	"github.com/tonhe/pulse/internal/stream"
	"github.com/tonhe/pulse/internal/telemetry"
)

// NewSession wires the configured catalog and stream transport into a
// session controller that runs on poster.
func NewSession(cfg *config.Config, poster loop.Poster, log zerolog.Logger, rec *telemetry.Recorder) (*session.Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	catalog, err := dashboard.NewCatalog(cfg, log)
	if err != nil {
		return nil, err
	}
	opener, err := stream.NewOpener(cfg, log)
	if err != nil {
		return nil, err
	}
	return session.New(session.Options{
		Catalog:          catalog,
		Opener:           opener,
		Poster:           poster,
		Logger:           log,
		Recorder:         rec,
		FetchTimeout:     cfg.Server.FetchTimeout.Duration,
		InitialDashboard: cfg.InitialDashboard,
	}), nil
}

// StartTelemetry serves Prometheus metrics on cfg.Telemetry.Listen until
// ctx is cancelled. It returns nil when telemetry is disabled; a nil
// Recorder is safe to use.
func StartTelemetry(ctx context.Context, cfg *config.Config, log zerolog.Logger) *telemetry.Recorder {
	addr := cfg.Telemetry.Listen
	if addr == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	rec := telemetry.NewRecorder(reg)
	go func() {
		if err := telemetry.Serve(ctx, addr, reg); err != nil {
			log.Error().Err(err).Str("addr", addr).Msg("telemetry server stopped")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
	return rec
}
