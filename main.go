package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/tonhe/pulse/cmd"
	"github.com/tonhe/pulse/internal/logging"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && cmd.IsSubcommand(args[0]) {
		cmd.Execute(args)
		return
	}

	fs := flag.NewFlagSet("pulse", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Config file path")
	dash := fs.String("dashboard", "", "Dashboard ID to open")
	theme := fs.String("theme", "", "Theme override")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := cmd.LoadConfig(*cfgPath)
	if *dash != "" {
		cfg.InitialDashboard = *dash
	}
	if *theme != "" {
		cfg.Theme = *theme
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		if err := cmd.RunTUI(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Without a terminal, stream to the log instead.
	log, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.Watch(ctx, cfg, log); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
