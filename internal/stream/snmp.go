package stream

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/rs/zerolog"

	"github.com/tonhe/pulse/internal/config"
)

// SNMPOpener turns SNMP polling into a metric stream: each configured
// metric is one OID on a single agent, read every Interval. The first
// successful read opens the stream; a failed read is reported as a
// recoverable error until MaxFailures consecutive failures close it.
type SNMPOpener struct {
	Config config.SNMPConfig
	Logger zerolog.Logger
}

// NewSNMPOpener creates an SNMPOpener from config, applying defaults.
func NewSNMPOpener(cfg config.SNMPConfig, log zerolog.Logger) *SNMPOpener {
	if cfg.Port == 0 {
		cfg.Port = 161
	}
	if cfg.Interval.Duration <= 0 {
		cfg.Interval = config.Duration{Duration: 10 * time.Second}
	}
	return &SNMPOpener{Config: cfg, Logger: log}
}

// Origin implements Opener.
func (o *SNMPOpener) Origin(metricID string) string {
	oid := o.Config.Oids[metricID]
	if oid == "" {
		oid = metricID
	}
	return fmt.Sprintf("snmp://%s:%d/%s", o.Config.Host, o.Config.Port, oid)
}

// Open implements Opener.
func (o *SNMPOpener) Open(metricID string, l Listener) Conn {
	log := o.Logger.With().Str("transport", "snmp").Str("origin", o.Origin(metricID)).Logger()
	oid, ok := o.Config.Oids[metricID]
	return startConn(l, log, o.Config.Interval.Duration, o.Config.MaxFailures, func(ctx context.Context, h *hooks) error {
		if !ok {
			return Fatal(fmt.Errorf("%w: no oid configured for %q", ErrUnknownMetric, metricID))
		}
		return o.session(ctx, oid, h)
	})
}

func (o *SNMPOpener) session(ctx context.Context, oid string, h *hooks) error {
	client, err := NewSNMPClient(o.Config, 5*time.Second)
	if err != nil {
		return Fatal(err)
	}
	client.Context = ctx
	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect to %s: %w", o.Config.Host, err)
	}
	defer client.Conn.Close()

	ticker := time.NewTicker(o.Config.Interval.Duration)
	defer ticker.Stop()

	opened := false
	for {
		data, err := pollOID(client, oid)
		if err != nil {
			return err
		}
		if !opened {
			h.opened()
			opened = true
		}
		h.deliver(data)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// pollOID reads a single OID and renders its value as a payload.
func pollOID(client *gosnmp.GoSNMP, oid string) ([]byte, error) {
	result, err := client.Get([]string{oid})
	if err != nil {
		return nil, err
	}
	if len(result.Variables) == 0 {
		return nil, fmt.Errorf("empty response for %s", oid)
	}
	v := result.Variables[0]
	switch v.Type {
	case gosnmp.NoSuchObject, gosnmp.NoSuchInstance, gosnmp.EndOfMibView:
		return nil, Fatal(fmt.Errorf("%w: %s not present on agent", ErrUnknownMetric, oid))
	case gosnmp.OctetString:
		b, _ := v.Value.([]byte)
		return b, nil
	default:
		return []byte(gosnmp.ToBigInt(v.Value).String()), nil
	}
}

// NewSNMPClient creates a gosnmp.GoSNMP client configured from cfg.
func NewSNMPClient(cfg config.SNMPConfig, timeout time.Duration) (*gosnmp.GoSNMP, error) {
	port := cfg.Port
	if port == 0 {
		port = 161
	}
	client := &gosnmp.GoSNMP{
		Target:  cfg.Host,
		Port:    uint16(port),
		Timeout: timeout,
		Retries: 2,
	}

	switch cfg.Version {
	case "1":
		client.Version = gosnmp.Version1
		client.Community = cfg.Community
	case "2c", "":
		client.Version = gosnmp.Version2c
		client.Community = cfg.Community
	case "3":
		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel
		client.MsgFlags = snmpv3MsgFlags(cfg)
		client.SecurityParameters = &gosnmp.UsmSecurityParameters{
			UserName:                 cfg.Username,
			AuthenticationProtocol:   snmpv3AuthProto(cfg.AuthProto),
			AuthenticationPassphrase: cfg.AuthPass,
			PrivacyProtocol:          snmpv3PrivProto(cfg.PrivProto),
			PrivacyPassphrase:        cfg.PrivPass,
		}
	default:
		return nil, fmt.Errorf("unsupported SNMP version: %s", cfg.Version)
	}
	return client, nil
}

func snmpv3MsgFlags(cfg config.SNMPConfig) gosnmp.SnmpV3MsgFlags {
	if cfg.PrivProto != "" && cfg.PrivPass != "" {
		return gosnmp.AuthPriv
	}
	if cfg.AuthProto != "" && cfg.AuthPass != "" {
		return gosnmp.AuthNoPriv
	}
	return gosnmp.NoAuthNoPriv
}

func snmpv3AuthProto(proto string) gosnmp.SnmpV3AuthProtocol {
	switch strings.ToUpper(proto) {
	case "MD5":
		return gosnmp.MD5
	case "SHA":
		return gosnmp.SHA
	case "SHA256":
		return gosnmp.SHA256
	case "SHA512":
		return gosnmp.SHA512
	default:
		return gosnmp.NoAuth
	}
}

func snmpv3PrivProto(proto string) gosnmp.SnmpV3PrivProtocol {
	switch strings.ToUpper(proto) {
	case "DES":
		return gosnmp.DES
	case "AES", "AES128":
		return gosnmp.AES
	case "AES192":
		return gosnmp.AES192
	case "AES256":
		return gosnmp.AES256
	default:
		return gosnmp.NoPriv
	}
}

// ProbeResult is one metric read by Probe.
type ProbeResult struct {
	MetricID string
	OID      string
	Value    string
	Err      error
}

// Probe reads every configured OID once, sorted by metric ID. A failed read
// is reported in its result rather than aborting the probe.
func (o *SNMPOpener) Probe(ctx context.Context) ([]ProbeResult, error) {
	if len(o.Config.Oids) == 0 {
		return nil, errors.New("no oids configured")
	}
	client, err := NewSNMPClient(o.Config, 5*time.Second)
	if err != nil {
		return nil, err
	}
	client.Context = ctx
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", o.Config.Host, err)
	}
	defer client.Conn.Close()

	ids := make([]string, 0, len(o.Config.Oids))
	for id := range o.Config.Oids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]ProbeResult, 0, len(ids))
	for _, id := range ids {
		oid := o.Config.Oids[id]
		data, err := pollOID(client, oid)
		results = append(results, ProbeResult{MetricID: id, OID: oid, Value: string(data), Err: err})
	}
	return results, nil
}
