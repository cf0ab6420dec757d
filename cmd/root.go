package cmd

import (
	"fmt"
	"os"
)

// Version is the release reported by `pulse version` and the TUI header.
const Version = "0.1.0"

// knownSubcommands is the set of CLI subcommands that bypass the TUI.
var knownSubcommands = map[string]bool{
	"dashboards": true,
	"watch":      true,
	"probe":      true,
	"config":     true,
	"themes":     true,
	"version":    true,
	"help":       true,
}

// IsSubcommand returns true if the argument is a known CLI subcommand.
func IsSubcommand(arg string) bool {
	return knownSubcommands[arg]
}

// Execute dispatches to the appropriate CLI subcommand handler.
func Execute(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "dashboards":
		dashboardsCmd(args[1:])
	case "watch":
		watchCmd(args[1:])
	case "probe":
		probeCmd(args[1:])
	case "config":
		configCmd(args[1:])
	case "themes":
		themesCmd()
	case "version":
		fmt.Printf("pulse v%s\n", Version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pulse - live metric dashboards

Usage:
  pulse                       Launch TUI dashboard
  pulse --dashboard ID        Launch with specific dashboard
  pulse --theme NAME          Launch with theme override
  pulse --config PATH         Use an alternate config file
  pulse dashboards <cmd>      Inspect the dashboard catalog
  pulse watch                 Stream values to the log without the TUI
  pulse probe                 Read every configured SNMP OID once
  pulse config <cmd>          Manage configuration
  pulse themes                List available themes
  pulse version               Show version
  pulse help                  Show this help

Dashboard Commands:
  pulse dashboards list            List catalog dashboards
  pulse dashboards show ID         Show widgets and metrics of a dashboard

Watch:
  pulse watch [--dashboard ID] [--for DURATION]

Config Commands:
  pulse config path                Show config file path
  pulse config show                Print the effective configuration
  pulse config theme NAME          Set default theme
  pulse config dashboard ID        Set initial dashboard`)
}
