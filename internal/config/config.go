package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Stream transports understood by stream.NewOpener.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
	TransportSNMP      = "snmp"
)

// Dashboard catalog sources understood by dashboard.NewCatalog.
const (
	SourceHTTP = "http"
	SourceDir  = "dir"
)

// Config is the top-level application configuration.
type Config struct {
	Theme            string          `toml:"theme"`
	InitialDashboard string          `toml:"initial_dashboard"`
	Server           ServerConfig    `toml:"server"`
	Catalog          CatalogConfig   `toml:"catalog"`
	Stream           StreamConfig    `toml:"stream"`
	Breaker          BreakerConfig   `toml:"breaker"`
	Log              LogConfig       `toml:"log"`
	Telemetry        TelemetryConfig `toml:"telemetry"`
}

// ServerConfig points at the metric server that serves dashboards and streams.
type ServerConfig struct {
	URL          string   `toml:"url"`
	FetchTimeout Duration `toml:"fetch_timeout"`
}

// CatalogConfig selects where dashboard definitions come from.
type CatalogConfig struct {
	Source string `toml:"source"`
	Dir    string `toml:"dir"`
}

// StreamConfig configures the live metric transport.
type StreamConfig struct {
	Transport  string     `toml:"transport"`
	Retry      Duration   `toml:"retry"`
	MaxRetries int        `toml:"max_retries"`
	SNMP       SNMPConfig `toml:"snmp"`
}

// SNMPConfig configures the SNMP polling transport. Oids maps a metric
// identifier to the OID polled for it.
type SNMPConfig struct {
	Host        string            `toml:"host"`
	Port        int               `toml:"port"`
	Version     string            `toml:"version"` // "1", "2c", "3"
	Community   string            `toml:"community"`
	Username    string            `toml:"username"`
	AuthProto   string            `toml:"auth_proto"`
	AuthPass    string            `toml:"auth_pass"`
	PrivProto   string            `toml:"priv_proto"`
	PrivPass    string            `toml:"priv_pass"`
	Interval    Duration          `toml:"interval"`
	MaxFailures int               `toml:"max_failures"`
	Oids        map[string]string `toml:"oids"`
}

// BreakerConfig configures the circuit breaker around the HTTP catalog.
type BreakerConfig struct {
	MaxFailures uint32   `toml:"max_failures"`
	Timeout     Duration `toml:"timeout"`
	Interval    Duration `toml:"interval"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
	Output string `toml:"output"` // "stderr", "stdout" or a file path
}

// TelemetryConfig configures the Prometheus endpoint. An empty Listen
// address disables it.
type TelemetryConfig struct {
	Listen string `toml:"listen"`
}

func DefaultConfig() *Config {
	return &Config{
		Theme: "solarized-dark",
		Server: ServerConfig{
			URL:          "http://localhost:8080",
			FetchTimeout: Duration{10 * time.Second},
		},
		Catalog: CatalogConfig{
			Source: SourceHTTP,
		},
		Stream: StreamConfig{
			Transport:  TransportSSE,
			Retry:      Duration{3 * time.Second},
			MaxRetries: 10,
			SNMP: SNMPConfig{
				Port:        161,
				Version:     "2c",
				Community:   "public",
				Interval:    Duration{10 * time.Second},
				MaxFailures: 3,
			},
		},
		Breaker: BreakerConfig{
			MaxFailures: 5,
			Timeout:     Duration{30 * time.Second},
			Interval:    Duration{60 * time.Second},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func SaveConfig(cfg *Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// applyEnvOverrides lets the server URL and log level be set without
// touching the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PULSE_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate reports the first configuration problem that would prevent the
// session from starting.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceHTTP:
		if c.Server.URL == "" {
			return errors.New("server.url is required for the http catalog")
		}
	case SourceDir:
		if c.Catalog.Dir == "" {
			return errors.New("catalog.dir is required for the dir catalog")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	switch strings.ToLower(c.Stream.Transport) {
	case TransportSSE, TransportWebSocket:
		if c.Server.URL == "" {
			return fmt.Errorf("server.url is required for the %s transport", c.Stream.Transport)
		}
	case TransportSNMP:
		if c.Stream.SNMP.Host == "" {
			return errors.New("stream.snmp.host is required for the snmp transport")
		}
	default:
		return fmt.Errorf("unknown stream transport %q", c.Stream.Transport)
	}
	return nil
}
