package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tonhe/pulse/internal/config"
	"github.com/tonhe/pulse/internal/health"
	"github.com/tonhe/pulse/internal/logging"
	"github.com/tonhe/pulse/internal/loop"
	"github.com/tonhe/pulse/internal/session"
)

func watchCmd(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Config file path")
	dash := fs.String("dashboard", "", "Dashboard ID to watch")
	runFor := fs.Duration("for", 0, "Stop after this long (0 runs until interrupted)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pulse watch [--config PATH] [--dashboard ID] [--for DURATION]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := LoadConfig(*cfgPath)
	if *dash != "" {
		cfg.InitialDashboard = *dash
	}

	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *runFor > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *runFor)
		defer cancel()
	}

	if err := Watch(ctx, cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Watch runs a session on its own event loop until ctx ends, logging the
// selected dashboard, every value change and every health change.
func Watch(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	rec := StartTelemetry(ctx, cfg, log)

	lp := loop.New(256)
	ctrl, err := NewSession(cfg, lp, log, rec)
	if err != nil {
		return err
	}
	logSession(ctrl, log)

	lp.Post(ctrl.Start)
	err = lp.Run(ctx)
	// The loop has stopped, so nothing else touches ctrl.
	ctrl.Close()

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// logSession attaches listeners that report session activity to log. They
// run on the session loop.
func logSession(ctrl *session.Controller, log zerolog.Logger) {
	var (
		selected string
		lastErr  error
		reported = make(map[string]health.Message)
	)

	ctrl.OnChange(func() {
		if err := ctrl.Err(); err != nil && err != lastErr {
			log.Warn().Err(err).Str("pending", ctrl.Pending()).Msg("dashboard unavailable")
		}
		lastErr = ctrl.Err()

		d := ctrl.Selected()
		if d == nil || d.ID == selected {
			return
		}
		selected = d.ID
		log.Info().
			Str("dashboard", d.ID).
			Str("name", d.Name).
			Strs("metrics", d.Definition.RequiredMetrics()).
			Msg("dashboard selected")
	})

	ctrl.Store().OnChange(func(metricID string) {
		v, _ := ctrl.Value(metricID)
		log.Info().Str("metric", metricID).Float64("value", v).Msg("value")
	})

	ctrl.OnHealthChange(func() {
		current := make(map[string]health.Message)
		for _, m := range ctrl.Health().Messages() {
			current[m.Origin] = m
			if prev, ok := reported[m.Origin]; ok && prev == m {
				continue
			}
			ev := log.Warn()
			if m.Severity == health.Danger {
				ev = log.Error()
			}
			ev.Str("origin", m.Origin).Str("severity", m.Severity.String()).Msg(m.Text)
		}
		for origin := range reported {
			if _, ok := current[origin]; !ok {
				log.Info().Str("origin", origin).Msg("stream healthy")
			}
		}
		reported = current
	})
}
