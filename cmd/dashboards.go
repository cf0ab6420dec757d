package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonhe/pulse/internal/dashboard"
)

func dashboardsCmd(args []string) {
	fs := flag.NewFlagSet("dashboards", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Config file path")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pulse dashboards [--config PATH] <list|show ID>")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}

	cfg := LoadConfig(*cfgPath)
	catalog, err := dashboard.NewCatalog(cfg, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	timeout := cfg.Server.FetchTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	switch fs.Arg(0) {
	case "list":
		err = listDashboards(ctx, catalog)
	case "show":
		if fs.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Error: dashboard ID is required")
			fs.Usage()
			os.Exit(1)
		}
		err = showDashboard(ctx, catalog, fs.Arg(1))
	default:
		fmt.Fprintf(os.Stderr, "Unknown dashboards command: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listDashboards(ctx context.Context, catalog dashboard.Catalog) error {
	summaries, err := catalog.List(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No dashboards found.")
		return nil
	}

	fmt.Printf("%-24s  %s\n", "ID", "Name")
	fmt.Printf("%-24s  %s\n", "--", "----")
	for _, s := range dashboard.SortedSummaries(summaries) {
		fmt.Printf("%-24s  %s\n", s.ID, s.Name)
	}
	return nil
}

func showDashboard(ctx context.Context, catalog dashboard.Catalog, id string) error {
	def, err := catalog.Definition(ctx, id)
	if err != nil {
		return err
	}

	layout := def.Layout(dashboard.DefaultLayout)
	fmt.Printf("Dashboard %s (%d columns)\n\n", id, layout.Columns)
	fmt.Printf("%-16s  %-24s  %s\n", "Widget", "Title", "Metric")
	fmt.Printf("%-16s  %-24s  %s\n", "------", "-----", "------")
	for _, w := range def.OrderedWidgets(dashboard.DefaultLayout) {
		fmt.Printf("%-16s  %-24s  %s\n", w.ID, w.Title, w.Metric)
	}
	fmt.Printf("\nMetrics: %d\n", len(def.RequiredMetrics()))
	return nil
}
