package monitor

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"netpulse/internal/netcheck"
)

func TestBuildDocument(t *testing.T) {
	stats := &Stats{}
	aggregator := NewAggregator(stats)

	first := pingReport(map[string]netcheck.Outcome{
		"8.8.8.8": netcheck.Success(18),
		"1.1.1.1": netcheck.Failure(errors.New("timeout")),
	})
	second := pingReport(map[string]netcheck.Outcome{
		"8.8.8.8": netcheck.Success(25),
		"1.1.1.1": netcheck.Success(9),
	})
	aggregator.Update(first)
	aggregator.Update(second)

	doc := BuildDocument([]Report{first, second}, stats)

	if len(doc.Results) != 2 {
		t.Fatalf("expected one record per cycle, got %d", len(doc.Results))
	}
	if doc.GeneratedAt == "" {
		t.Fatalf("expected generation timestamp")
	}
	if doc.Results[0].PingResults["1.1.1.1"] != nil {
		t.Fatalf("expected failed probe exported as null")
	}
	if ms := doc.Results[0].PingResults["8.8.8.8"]; ms == nil || *ms != 18 {
		t.Fatalf("expected measured probe exported with its value, got %v", ms)
	}
	if doc.Stats.TotalTests != 2 {
		t.Fatalf("expected 2 total tests in snapshot, got %d", doc.Stats.TotalTests)
	}
	if doc.Stats.MinLatency == nil || *doc.Stats.MinLatency != 9 {
		t.Fatalf("expected min latency 9, got %v", doc.Stats.MinLatency)
	}
}

func TestBuildDocumentNoSuccesses(t *testing.T) {
	stats := &Stats{}
	aggregator := NewAggregator(stats)
	report := pingReport(map[string]netcheck.Outcome{
		"a": netcheck.Failure(nil),
	})
	aggregator.Update(report)

	doc := BuildDocument([]Report{report}, stats)
	if doc.Stats.MinLatency != nil || doc.Stats.MaxLatency != nil {
		t.Fatalf("expected nil extrema before any success, got %v/%v", doc.Stats.MinLatency, doc.Stats.MaxLatency)
	}
}

func TestWriteDocumentRoundTrip(t *testing.T) {
	stats := &Stats{}
	report := pingReport(map[string]netcheck.Outcome{
		"a": netcheck.Success(7),
	})
	NewAggregator(stats).Update(report)
	doc := BuildDocument([]Report{report}, stats)

	path := filepath.Join(t.TempDir(), "results.json")
	if err := WriteDocument(path, doc); err != nil {
		t.Fatalf("WriteDocument returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	var decoded Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(decoded.Results) != 1 {
		t.Fatalf("expected 1 record after round trip, got %d", len(decoded.Results))
	}
	if decoded.Stats.SuccessfulPings != 1 {
		t.Fatalf("expected 1 successful ping, got %d", decoded.Stats.SuccessfulPings)
	}
}
