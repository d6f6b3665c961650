package monitor

import (
	"reflect"
	"testing"
)

func TestAssessReadyWithHealthyStats(t *testing.T) {
	stats := Stats{AvgLatencyMs: 30, PacketLossPct: 0.5}
	assessment := Assess(stats)
	if assessment.Latency != BandExcellent {
		t.Fatalf("expected excellent latency, got %s", assessment.Latency)
	}
	if assessment.Stability != BandExcellent {
		t.Fatalf("expected excellent stability, got %s", assessment.Stability)
	}
	if assessment.Overall != VerdictReady {
		t.Fatalf("expected ready verdict, got %s", assessment.Overall)
	}
	if len(assessment.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %v", assessment.Recommendations)
	}
}

func TestAssessHighLatencyNotReady(t *testing.T) {
	stats := Stats{AvgLatencyMs: 250, PacketLossPct: 0.2}
	assessment := Assess(stats)
	if assessment.Latency != BandPoor {
		t.Fatalf("expected poor latency, got %s", assessment.Latency)
	}
	if assessment.Stability != BandExcellent {
		t.Fatalf("expected excellent stability, got %s", assessment.Stability)
	}
	if assessment.Overall != VerdictNotReady {
		t.Fatalf("expected not_ready verdict, got %s", assessment.Overall)
	}
	found := false
	for _, rec := range assessment.Recommendations {
		if rec == recommendWired {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected wired-connection recommendation, got %v", assessment.Recommendations)
	}
}

func TestAssessUnknownLatencyPoorStability(t *testing.T) {
	// No successful ping yet: latency band stays unknown and must not
	// count as marginal even though stability is poor.
	stats := Stats{AvgLatencyMs: 0, PacketLossPct: 10}
	assessment := Assess(stats)
	if assessment.Latency != BandUnknown {
		t.Fatalf("expected unknown latency, got %s", assessment.Latency)
	}
	if assessment.Stability != BandPoor {
		t.Fatalf("expected poor stability, got %s", assessment.Stability)
	}
	if assessment.Overall != VerdictNotReady {
		t.Fatalf("expected not_ready verdict, got %s", assessment.Overall)
	}
}

func TestAssessFairBandIsMarginal(t *testing.T) {
	stats := Stats{AvgLatencyMs: 150, PacketLossPct: 0.1}
	assessment := Assess(stats)
	if assessment.Latency != BandFair {
		t.Fatalf("expected fair latency, got %s", assessment.Latency)
	}
	if assessment.Overall != VerdictMarginal {
		t.Fatalf("expected marginal verdict, got %s", assessment.Overall)
	}
}

func TestAssessIsPure(t *testing.T) {
	stats := Stats{AvgLatencyMs: 80, PacketLossPct: 2.4}
	first := Assess(stats)
	second := Assess(stats)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical assessments, got %+v and %+v", first, second)
	}
}
