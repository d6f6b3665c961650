package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Targets            []string            `json:"targets" yaml:"targets"`
	IntervalSeconds    float64             `json:"interval_seconds" yaml:"interval_seconds"`
	DurationSeconds    float64             `json:"duration_seconds" yaml:"duration_seconds"`
	PingMode           string              `json:"ping_mode" yaml:"ping_mode"`
	PingTimeoutSeconds float64             `json:"ping_timeout_seconds" yaml:"ping_timeout_seconds"`
	TCPTargets         []string            `json:"tcp_targets" yaml:"tcp_targets"`
	TCPTimeoutSeconds  float64             `json:"tcp_timeout_seconds" yaml:"tcp_timeout_seconds"`
	DNSTimeoutSeconds  float64             `json:"dns_timeout_seconds" yaml:"dns_timeout_seconds"`
	Bandwidth          BandwidthConfig     `json:"bandwidth" yaml:"bandwidth"`
	Database           DatabaseConfig      `json:"database" yaml:"database"`
	Observer           ObservabilityConfig `json:"observability" yaml:"observability"`
}

type BandwidthConfig struct {
	Endpoint       string  `json:"endpoint" yaml:"endpoint"`
	SizeKB         int     `json:"size_kb" yaml:"size_kb"`
	TimeoutSeconds float64 `json:"timeout_seconds" yaml:"timeout_seconds"`
	Disabled       bool    `json:"disabled" yaml:"disabled"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn" yaml:"dsn"`
	MaxConns int32  `json:"max_conns" yaml:"max_conns"`
}

type ObservabilityConfig struct {
	OTLPEndpoint string  `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	ServiceName  string  `json:"service_name" yaml:"service_name"`
	SampleRatio  float64 `json:"sample_ratio" yaml:"sample_ratio"`
}

// PingModes accepted by the config: "system" shells out to the OS ping
// utility, "icmp" sends echo requests in-process.
const (
	PingModeSystem = "system"
	PingModeICMP   = "icmp"
)

func DefaultConfig() Config {
	return Config{
		Targets: []string{
			"8.8.8.8",           // Google DNS
			"1.1.1.1",           // Cloudflare DNS
			"stun.l.google.com", // STUN server
			"localhost",         // local companion service
		},
		IntervalSeconds:    2,
		PingMode:           PingModeSystem,
		PingTimeoutSeconds: 3,
		TCPTargets: []string{
			"google.com:80",
			"github.com:443",
			"localhost:9000", // companion session service
		},
		TCPTimeoutSeconds: 3,
		DNSTimeoutSeconds: 3,
		Bandwidth: BandwidthConfig{
			Endpoint:       "https://httpbin.org",
			SizeKB:         100,
			TimeoutSeconds: 10,
		},
		Database: DatabaseConfig{
			MaxConns: 4,
		},
		Observer: ObservabilityConfig{
			ServiceName: "netpulse",
			SampleRatio: 1,
		},
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse json config: %w", err)
		}
	default:
		var yamlErr error
		if yamlErr = yaml.Unmarshal(data, &cfg); yamlErr == nil {
			break
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.New("config format not recognized (expected yaml/json)")
		}
	}
	normalizeConfig(&cfg)
	return cfg, nil
}

func normalizeConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = DefaultConfig().Targets
	}
	if cfg.IntervalSeconds <= 0 {
		cfg.IntervalSeconds = 2
	}
	if cfg.DurationSeconds < 0 {
		cfg.DurationSeconds = 0
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.PingMode))
	if mode != PingModeICMP {
		mode = PingModeSystem
	}
	cfg.PingMode = mode
	if cfg.PingTimeoutSeconds <= 0 {
		cfg.PingTimeoutSeconds = 3
	}
	if len(cfg.TCPTargets) == 0 {
		cfg.TCPTargets = DefaultConfig().TCPTargets
	}
	if cfg.TCPTimeoutSeconds <= 0 {
		cfg.TCPTimeoutSeconds = 3
	}
	if cfg.DNSTimeoutSeconds <= 0 {
		cfg.DNSTimeoutSeconds = 3
	}
	if strings.TrimSpace(cfg.Bandwidth.Endpoint) == "" {
		cfg.Bandwidth.Endpoint = "https://httpbin.org"
	}
	if cfg.Bandwidth.SizeKB <= 0 {
		cfg.Bandwidth.SizeKB = 100
	}
	if cfg.Bandwidth.TimeoutSeconds <= 0 {
		cfg.Bandwidth.TimeoutSeconds = 10
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 4
	}
	if strings.TrimSpace(cfg.Observer.ServiceName) == "" {
		cfg.Observer.ServiceName = "netpulse"
	}
	if cfg.Observer.SampleRatio <= 0 || cfg.Observer.SampleRatio > 1 {
		cfg.Observer.SampleRatio = 1
	}
}

// Interval returns the cycle cadence as a duration.
func (c Config) Interval() time.Duration {
	return secondsOr(c.IntervalSeconds, 2*time.Second)
}

// Duration returns the total run bound; zero means unbounded.
func (c Config) Duration() time.Duration {
	if c.DurationSeconds <= 0 {
		return 0
	}
	return time.Duration(c.DurationSeconds * float64(time.Second))
}

// BandwidthTimeout returns the bulk-transfer deadline.
func (c Config) BandwidthTimeout() time.Duration {
	return secondsOr(c.Bandwidth.TimeoutSeconds, 10*time.Second)
}

// ParseTCPTargets converts "host:port" entries into TCPTarget values,
// rejecting malformed entries instead of silently dropping them.
func ParseTCPTargets(entries []string) ([]TCPTarget, error) {
	targets := make([]TCPTarget, 0, len(entries))
	for _, entry := range entries {
		host, portText, err := net.SplitHostPort(strings.TrimSpace(entry))
		if err != nil {
			return nil, fmt.Errorf("tcp target %q: %w", entry, err)
		}
		port, err := strconv.Atoi(portText)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("tcp target %q: invalid port", entry)
		}
		targets = append(targets, TCPTarget{Host: host, Port: port})
	}
	return targets, nil
}
