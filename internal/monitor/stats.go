package monitor

// Stats is the process-lifetime cumulative view over all finished
// cycles. It is owned by whoever constructs it and mutated only
// through Aggregator.Update; min/max latency are meaningless until at
// least one ping has succeeded (HasLatencySamples).
type Stats struct {
	TotalCycles     int
	SuccessfulPings int
	FailedPings     int

	// AvgLatencyMs is recomputed from the successful pings of the most
	// recent cycle only, not maintained as a running mean. A cycle with
	// no successful ping leaves the previous value in place. Readiness
	// thresholds are tuned against exactly this behavior.
	AvgLatencyMs float64

	MinLatencyMs  float64
	MaxLatencyMs  float64
	PacketLossPct float64

	latencyObserved bool
}

// HasLatencySamples reports whether min/max latency carry real data.
func (s *Stats) HasLatencySamples() bool {
	return s.latencyObserved
}

// Aggregator folds cycle reports into a Stats instance. All counters
// for one report are applied together; callers must not read or
// mutate the underlying Stats concurrently with Update.
type Aggregator struct {
	stats *Stats
}

func NewAggregator(stats *Stats) *Aggregator {
	return &Aggregator{stats: stats}
}

func (a *Aggregator) Update(report Report) {
	s := a.stats
	s.TotalCycles++

	var cycleSum float64
	var cycleSuccesses int
	for _, outcome := range report.Ping {
		if !outcome.OK {
			s.FailedPings++
			continue
		}
		s.SuccessfulPings++
		cycleSum += outcome.LatencyMs
		cycleSuccesses++
		if !s.latencyObserved || outcome.LatencyMs < s.MinLatencyMs {
			s.MinLatencyMs = outcome.LatencyMs
		}
		if !s.latencyObserved || outcome.LatencyMs > s.MaxLatencyMs {
			s.MaxLatencyMs = outcome.LatencyMs
		}
		s.latencyObserved = true
	}

	if cycleSuccesses > 0 {
		s.AvgLatencyMs = cycleSum / float64(cycleSuccesses)
	}

	attempts := s.SuccessfulPings + s.FailedPings
	if attempts > 0 {
		s.PacketLossPct = float64(s.FailedPings) / float64(attempts) * 100
	} else {
		s.PacketLossPct = 0
	}
}

// StatsSnapshot is the export form of Stats. Min and max are nil until
// the first successful ping so that "no data" never reads as a real
// measurement.
type StatsSnapshot struct {
	TotalTests      int      `json:"total_tests"`
	SuccessfulPings int      `json:"successful_pings"`
	FailedPings     int      `json:"failed_pings"`
	AvgLatency      float64  `json:"avg_latency"`
	MinLatency      *float64 `json:"min_latency"`
	MaxLatency      *float64 `json:"max_latency"`
	PacketLoss      float64  `json:"packet_loss"`
}

func (s *Stats) Snapshot() StatsSnapshot {
	snapshot := StatsSnapshot{
		TotalTests:      s.TotalCycles,
		SuccessfulPings: s.SuccessfulPings,
		FailedPings:     s.FailedPings,
		AvgLatency:      s.AvgLatencyMs,
		PacketLoss:      s.PacketLossPct,
	}
	if s.latencyObserved {
		minLatency := s.MinLatencyMs
		maxLatency := s.MaxLatencyMs
		snapshot.MinLatency = &minLatency
		snapshot.MaxLatency = &maxLatency
	}
	return snapshot
}
