package monitor

// Band is a coarse quality classification derived from one metric.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandFair      Band = "fair"
	BandPoor      Band = "poor"
	BandUnknown   Band = "unknown"
)

// Verdict is the overall readiness call for latency-sensitive use.
type Verdict string

const (
	VerdictReady    Verdict = "ready"
	VerdictMarginal Verdict = "marginal"
	VerdictNotReady Verdict = "not_ready"
	VerdictUnknown  Verdict = "unknown"
)

// Assessment is a pure view over cumulative stats; it carries no state
// of its own and is recomputed on every request.
type Assessment struct {
	Overall         Verdict  `json:"overall"`
	Latency         Band     `json:"latency"`
	Stability       Band     `json:"stability"`
	Recommendations []string `json:"recommendations"`
}

const (
	recommendWired     = "High latency detected. Consider using wired connection."
	recommendStability = "High packet loss detected. Check network stability."
)

// Assess classifies cumulative stats into readiness bands. It is
// deterministic: identical stats always produce identical assessments.
func Assess(stats Stats) Assessment {
	assessment := Assessment{
		Overall:         VerdictUnknown,
		Latency:         BandUnknown,
		Stability:       BandUnknown,
		Recommendations: []string{},
	}

	if stats.AvgLatencyMs > 0 {
		switch {
		case stats.AvgLatencyMs < 50:
			assessment.Latency = BandExcellent
		case stats.AvgLatencyMs < 100:
			assessment.Latency = BandGood
		case stats.AvgLatencyMs < 200:
			assessment.Latency = BandFair
		default:
			assessment.Latency = BandPoor
			assessment.Recommendations = append(assessment.Recommendations, recommendWired)
		}
	}

	switch {
	case stats.PacketLossPct < 1:
		assessment.Stability = BandExcellent
	case stats.PacketLossPct < 3:
		assessment.Stability = BandGood
	case stats.PacketLossPct < 5:
		assessment.Stability = BandFair
	default:
		assessment.Stability = BandPoor
		assessment.Recommendations = append(assessment.Recommendations, recommendStability)
	}

	latencyOK := assessment.Latency == BandExcellent || assessment.Latency == BandGood
	stabilityOK := assessment.Stability == BandExcellent || assessment.Stability == BandGood
	switch {
	case latencyOK && stabilityOK:
		assessment.Overall = VerdictReady
	case assessment.Latency == BandFair || assessment.Stability == BandFair:
		// Literal comparison against "fair" on purpose: an unknown
		// latency band combined with poor stability must land in
		// not_ready, never marginal.
		assessment.Overall = VerdictMarginal
	default:
		assessment.Overall = VerdictNotReady
	}

	return assessment
}
