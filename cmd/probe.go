package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonhe/pulse/internal/stream"
)

func probeCmd(args []string) {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Config file path")
	host := fs.String("host", "", "SNMP agent (overrides stream.snmp.host)")
	port := fs.Int("port", 0, "SNMP port (overrides stream.snmp.port)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pulse probe [--config PATH] [--host HOST] [--port PORT]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg := LoadConfig(*cfgPath)
	sc := cfg.Stream.SNMP
	if *host != "" {
		sc.Host = *host
	}
	if *port != 0 {
		sc.Port = *port
	}
	if sc.Host == "" {
		fmt.Fprintln(os.Stderr, "Error: no SNMP host configured")
		fs.Usage()
		os.Exit(1)
	}

	opener := stream.NewSNMPOpener(sc, zerolog.Nop())
	fmt.Fprintf(os.Stderr, "Probing %s:%d...\n", opener.Config.Host, opener.Config.Port)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := opener.Probe(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	failed := 0
	fmt.Printf("%-24s  %-32s  %s\n", "Metric", "OID", "Value")
	fmt.Printf("%-24s  %-32s  %s\n", "------", "---", "-----")
	for _, r := range results {
		value := r.Value
		if r.Err != nil {
			value = "error: " + r.Err.Error()
			failed++
		}
		fmt.Printf("%-24s  %-32s  %s\n", r.MetricID, r.OID, value)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
