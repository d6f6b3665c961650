// Package netcheck provides the individual network probes the monitor
// fans out each cycle: ICMP/system ping, TCP connect, HTTP bulk
// transfer and DNS resolution. Every probe is a single bounded
// operation that yields a measured duration or an explicit failure.
package netcheck

import (
	"context"
	"time"
)

// Outcome is the result of one probe invocation: either a measured
// elapsed time in milliseconds, or an explicit failure. There is no
// partial state; a failed probe never carries a latency.
type Outcome struct {
	OK        bool    `json:"ok"`
	LatencyMs float64 `json:"latency_ms"`
	Err       string  `json:"error,omitempty"`
}

func Success(latencyMs float64) Outcome {
	if latencyMs < 0 {
		latencyMs = 0
	}
	return Outcome{OK: true, LatencyMs: latencyMs}
}

func Failure(err error) Outcome {
	msg := "probe failed"
	if err != nil {
		msg = err.Error()
	}
	return Outcome{Err: msg}
}

// elapsedMs reports the time since start with sub-millisecond precision.
func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}

// Pinger checks reachability of a single target.
type Pinger interface {
	Ping(ctx context.Context, target string, timeout time.Duration) Outcome
}

// Dialer measures TCP connection establishment time.
type Dialer interface {
	Dial(ctx context.Context, host string, port int, timeout time.Duration) Outcome
}

// BandwidthProber estimates download throughput in kilobits per second.
type BandwidthProber interface {
	Measure(ctx context.Context) (float64, error)
}

// Resolver measures name resolution time for a single target.
type Resolver interface {
	Resolve(ctx context.Context, target string, timeout time.Duration) Outcome
}
