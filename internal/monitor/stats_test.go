package monitor

import (
	"testing"
	"time"

	"netpulse/internal/netcheck"
)

func pingReport(outcomes map[string]netcheck.Outcome) Report {
	return Report{
		Timestamp: time.Now().UTC(),
		Ping:      outcomes,
		DNS:       map[string]netcheck.Outcome{},
	}
}

func TestAggregatorCountsMatchCyclesTimesTargets(t *testing.T) {
	stats := &Stats{}
	aggregator := NewAggregator(stats)

	cycles := 3
	for i := 0; i < cycles; i++ {
		aggregator.Update(pingReport(map[string]netcheck.Outcome{
			"8.8.8.8": netcheck.Success(20),
			"1.1.1.1": netcheck.Failure(nil),
		}))
	}

	if stats.TotalCycles != cycles {
		t.Fatalf("expected %d cycles, got %d", cycles, stats.TotalCycles)
	}
	if got := stats.SuccessfulPings + stats.FailedPings; got != cycles*2 {
		t.Fatalf("expected %d attempts, got %d", cycles*2, got)
	}
}

func TestAggregatorMinMaxFold(t *testing.T) {
	stats := &Stats{}
	aggregator := NewAggregator(stats)

	if stats.HasLatencySamples() {
		t.Fatalf("expected no latency samples before first success")
	}
	snapshot := stats.Snapshot()
	if snapshot.MinLatency != nil || snapshot.MaxLatency != nil {
		t.Fatalf("expected nil min/max before first success, got %v/%v", snapshot.MinLatency, snapshot.MaxLatency)
	}

	aggregator.Update(pingReport(map[string]netcheck.Outcome{
		"a": netcheck.Success(20),
		"b": netcheck.Success(5),
	}))
	aggregator.Update(pingReport(map[string]netcheck.Outcome{
		"a": netcheck.Success(30),
		"b": netcheck.Failure(nil),
	}))

	if !stats.HasLatencySamples() {
		t.Fatalf("expected latency samples after successes")
	}
	if stats.MinLatencyMs != 5 {
		t.Fatalf("expected min 5, got %f", stats.MinLatencyMs)
	}
	if stats.MaxLatencyMs != 30 {
		t.Fatalf("expected max 30, got %f", stats.MaxLatencyMs)
	}
	if stats.MinLatencyMs > stats.MaxLatencyMs {
		t.Fatalf("min %f exceeds max %f", stats.MinLatencyMs, stats.MaxLatencyMs)
	}
}

func TestAggregatorAvgLatencyIsPerCycle(t *testing.T) {
	stats := &Stats{}
	aggregator := NewAggregator(stats)

	aggregator.Update(pingReport(map[string]netcheck.Outcome{
		"a": netcheck.Success(10),
		"b": netcheck.Success(20),
	}))
	if stats.AvgLatencyMs != 15 {
		t.Fatalf("expected avg 15 after first cycle, got %f", stats.AvgLatencyMs)
	}

	// A cycle with no successful ping leaves the previous average in place.
	aggregator.Update(pingReport(map[string]netcheck.Outcome{
		"a": netcheck.Failure(nil),
		"b": netcheck.Failure(nil),
	}))
	if stats.AvgLatencyMs != 15 {
		t.Fatalf("expected avg unchanged after all-failure cycle, got %f", stats.AvgLatencyMs)
	}

	// The next successful cycle overwrites it; this is not a running mean.
	aggregator.Update(pingReport(map[string]netcheck.Outcome{
		"a": netcheck.Success(40),
		"b": netcheck.Failure(nil),
	}))
	if stats.AvgLatencyMs != 40 {
		t.Fatalf("expected avg 40 after third cycle, got %f", stats.AvgLatencyMs)
	}
}

func TestAggregatorPacketLossBounds(t *testing.T) {
	stats := &Stats{}
	aggregator := NewAggregator(stats)

	aggregator.Update(pingReport(map[string]netcheck.Outcome{}))
	if stats.PacketLossPct != 0 {
		t.Fatalf("expected zero packet loss with no attempts, got %f", stats.PacketLossPct)
	}

	aggregator.Update(pingReport(map[string]netcheck.Outcome{
		"a": netcheck.Failure(nil),
		"b": netcheck.Failure(nil),
	}))
	if stats.PacketLossPct != 100 {
		t.Fatalf("expected 100%% loss, got %f", stats.PacketLossPct)
	}

	aggregator.Update(pingReport(map[string]netcheck.Outcome{
		"a": netcheck.Success(10),
		"b": netcheck.Success(12),
	}))
	if stats.PacketLossPct < 0 || stats.PacketLossPct > 100 {
		t.Fatalf("packet loss out of range: %f", stats.PacketLossPct)
	}
	if stats.PacketLossPct != 50 {
		t.Fatalf("expected 50%% loss after 2 of 4 failures, got %f", stats.PacketLossPct)
	}
}
