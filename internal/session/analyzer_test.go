package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func sampleSeries(count int, spacing time.Duration, msgType string) []Sample {
	base := time.Now()
	samples := make([]Sample, 0, count)
	for i := 0; i < count; i++ {
		samples = append(samples, Sample{ReceivedAt: base.Add(time.Duration(i) * spacing), Type: msgType})
	}
	return samples
}

func TestAnalyzeExcellentThroughput(t *testing.T) {
	// 40 messages over ~2s is ~20 msg/s.
	report := Analyze(sampleSeries(40, 50*time.Millisecond, "stats"))
	if report.Quality != "excellent" {
		t.Fatalf("expected excellent quality, got %s", report.Quality)
	}
	if report.TotalMessages != 40 {
		t.Fatalf("expected 40 messages, got %d", report.TotalMessages)
	}
	if len(report.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %v", report.Recommendations)
	}
}

func TestAnalyzePoorThroughput(t *testing.T) {
	// 3 messages over ~4s is below 1 msg/s.
	report := Analyze(sampleSeries(3, 2*time.Second, "stats"))
	if report.Quality != "poor" {
		t.Fatalf("expected poor quality, got %s", report.Quality)
	}
	foundThroughput := false
	foundFewMessages := false
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "throughput") {
			foundThroughput = true
		}
		if strings.Contains(rec, "few messages") {
			foundFewMessages = true
		}
	}
	if !foundThroughput || !foundFewMessages {
		t.Fatalf("expected throughput and few-messages recommendations, got %v", report.Recommendations)
	}
}

func TestAnalyzeErrorMessagesFlagged(t *testing.T) {
	samples := sampleSeries(20, 50*time.Millisecond, "stats")
	samples = append(samples, Sample{ReceivedAt: time.Now(), Type: "error"})
	report := Analyze(samples)
	found := false
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, "Error messages") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error-message recommendation, got %v", report.Recommendations)
	}
	if report.MessageTypes["error"] != 1 {
		t.Fatalf("expected one error message counted, got %d", report.MessageTypes["error"])
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	report := Analyze(nil)
	if report.Quality != "unknown" {
		t.Fatalf("expected unknown quality with no data, got %s", report.Quality)
	}
	if report.TotalMessages != 0 {
		t.Fatalf("expected zero messages, got %d", report.TotalMessages)
	}
}

func TestCollectAgainstEchoServer(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			messageType, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, payload); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	analyzer := NewAnalyzer(url, nil)

	samples, err := analyzer.Collect(context.Background(), 500*time.Millisecond)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(samples) == 0 {
		t.Fatalf("expected echoed messages to be collected")
	}
	types := map[string]bool{}
	for _, sample := range samples {
		types[sample.Type] = true
	}
	if !types["stats"] && !types["host-ready"] {
		t.Fatalf("expected echoed frame types, got %v", types)
	}
}
