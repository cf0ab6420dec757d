package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tonhe/pulse/internal/config"
	"github.com/tonhe/pulse/internal/logging"
	"github.com/tonhe/pulse/tui"
)

// RunTUI runs the dashboard UI with the Bubble Tea program as the session
// event loop. Logs go to the configured file, or the default log path when
// none is set, so they do not corrupt the screen.
func RunTUI(cfg *config.Config) error {
	logCfg := cfg.Log
	if logCfg.Output == "" || logCfg.Output == "stdout" || logCfg.Output == "stderr" {
		path, err := config.GetLogPath()
		if err != nil {
			return err
		}
		logCfg.Output = path
	}
	log, closeLog, err := logging.New(logCfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := StartTelemetry(ctx, cfg, log)

	bridge := tui.NewBridge()
	ctrl, err := NewSession(cfg, bridge, log, rec)
	if err != nil {
		return err
	}

	model := tui.NewAppModel(cfg, ctrl, Version)
	p := tea.NewProgram(model, tea.WithAltScreen())
	bridge.Attach(p)

	log.Info().Str("version", Version).Msg("starting tui")
	_, err = p.Run()
	return err
}
