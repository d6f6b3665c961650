package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"netpulse/internal/netcheck"
)

// CycleRecord is the export form of one cycle. Failed probes surface
// as JSON null, distinguishable from a measured zero. The shape is a
// stable contract for downstream report generators.
type CycleRecord struct {
	Timestamp     string              `json:"timestamp"`
	PingResults   map[string]*float64 `json:"ping_results"`
	TCPResults    map[string]*float64 `json:"tcp_results"`
	Bandwidth     *float64            `json:"bandwidth"`
	DNSResolution map[string]*float64 `json:"dns_resolution"`
}

// Document is the full export: one record per cycle, the cumulative
// snapshot and a generation timestamp.
type Document struct {
	Results     []CycleRecord `json:"results"`
	Stats       StatsSnapshot `json:"stats"`
	GeneratedAt string        `json:"generated_at"`
}

func BuildDocument(history []Report, stats *Stats) Document {
	records := make([]CycleRecord, 0, len(history))
	for _, report := range history {
		records = append(records, RecordFromReport(report))
	}
	return Document{
		Results:     records,
		Stats:       stats.Snapshot(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

func RecordFromReport(report Report) CycleRecord {
	record := CycleRecord{
		Timestamp:     report.Timestamp.Format(time.RFC3339),
		PingResults:   make(map[string]*float64, len(report.Ping)),
		TCPResults:    make(map[string]*float64, len(report.TCP)),
		DNSResolution: make(map[string]*float64, len(report.DNS)),
		Bandwidth:     report.BandwidthKbps,
	}
	for target, outcome := range report.Ping {
		record.PingResults[target] = outcomeMs(outcome)
	}
	for _, result := range report.TCP {
		record.TCPResults[result.Label] = outcomeMs(result.Outcome)
	}
	for target, outcome := range report.DNS {
		record.DNSResolution[target] = outcomeMs(outcome)
	}
	return record
}

func outcomeMs(outcome netcheck.Outcome) *float64 {
	if !outcome.OK {
		return nil
	}
	ms := outcome.LatencyMs
	return &ms
}

// WriteDocument persists the export document as indented JSON.
func WriteDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results document: %w", err)
	}
	return os.WriteFile(filepath.Clean(path), data, 0o644)
}
