// Package monitor drives recurring network-health measurement cycles,
// folds the outcomes into cumulative statistics and classifies the
// aggregate quality into readiness bands.
package monitor

import (
	"fmt"
	"time"

	"netpulse/internal/netcheck"
)

// TCPTarget is one host:port pair for the transport-connect sub-phase.
type TCPTarget struct {
	Host string
	Port int
}

func (t TCPTarget) Label() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// TCPResult keeps the transport-connect outcome alongside its label.
// The slice form preserves the configured probe order in the report.
type TCPResult struct {
	Label   string           `json:"label"`
	Outcome netcheck.Outcome `json:"outcome"`
}

// Report holds everything measured in one cycle. It is assembled once
// by the orchestrator and never mutated afterwards.
type Report struct {
	Timestamp     time.Time                   `json:"timestamp"`
	Ping          map[string]netcheck.Outcome `json:"ping_results"`
	TCP           []TCPResult                 `json:"tcp_results"`
	BandwidthKbps *float64                    `json:"bandwidth"`
	DNS           map[string]netcheck.Outcome `json:"dns_resolution"`
}
