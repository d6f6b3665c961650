// Package session measures the quality of the companion service's
// persistent websocket channel: it keeps a session open for a fixed
// duration, sends periodic stats frames, tallies what comes back and
// classifies message throughput into quality bands.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Message is the wire frame the companion service speaks: a short type
// tag, a session identifier and an optional payload.
type Message struct {
	Type    string         `json:"t"`
	Session string         `json:"s"`
	Data    map[string]any `json:"d,omitempty"`
}

// Sample records one received message.
type Sample struct {
	ReceivedAt time.Time
	Type       string
}

type Analyzer struct {
	url      string
	interval time.Duration
	dialer   *websocket.Dialer
	logger   *slog.Logger
}

func NewAnalyzer(url string, logger *slog.Logger) *Analyzer {
	if strings.TrimSpace(url) == "" {
		url = "ws://localhost:9000"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		url:      url,
		interval: 100 * time.Millisecond,
		dialer:   websocket.DefaultDialer,
		logger:   logger,
	}
}

// Collect connects to the channel, announces itself, then sends stats
// frames on a fixed cadence for the given duration while recording
// every message received. The connection failing mid-run ends the
// collection with whatever was gathered plus the error.
func (a *Analyzer) Collect(ctx context.Context, duration time.Duration) ([]Sample, error) {
	conn, _, err := a.dialer.DialContext(ctx, a.url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", a.url, err)
	}
	defer conn.Close()

	sessionID := fmt.Sprintf("probe_%d", time.Now().Unix())
	if err := conn.WriteJSON(Message{Type: "host-ready", Session: sessionID}); err != nil {
		return nil, fmt.Errorf("announce session: %w", err)
	}

	received := make(chan Sample, 64)
	readerDone := make(chan error, 1)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				readerDone <- err
				return
			}
			var msg Message
			if err := json.Unmarshal(payload, &msg); err != nil {
				continue
			}
			select {
			case received <- Sample{ReceivedAt: time.Now(), Type: msg.Type}:
			case <-quit:
				return
			}
		}
	}()

	var samples []Sample
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	deadline := time.NewTimer(duration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return samples, nil
		case <-deadline.C:
			message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
			return samples, nil
		case sample := <-received:
			samples = append(samples, sample)
		case err := <-readerDone:
			a.logger.Warn("session channel closed early", "error", err)
			return samples, nil
		case <-ticker.C:
			frame := Message{
				Type:    "stats",
				Session: sessionID,
				Data: map[string]any{
					"timestamp": time.Now().UnixMilli(),
					"test_data": "performance_test",
				},
			}
			if err := conn.WriteJSON(frame); err != nil {
				a.logger.Warn("session write failed", "error", err)
				return samples, nil
			}
		}
	}
}

// Report summarises one collection run.
type Report struct {
	TotalMessages   int            `json:"total_messages"`
	MessageTypes    map[string]int `json:"message_types"`
	DurationSeconds float64        `json:"duration_seconds"`
	Quality         string         `json:"connection_quality"`
	Recommendations []string       `json:"recommendations"`
	GeneratedAt     string         `json:"generated_at"`
}

// Analyze classifies collected samples. Pure: same samples, same report.
func Analyze(samples []Sample) Report {
	report := Report{
		TotalMessages:   len(samples),
		MessageTypes:    map[string]int{},
		Quality:         "unknown",
		Recommendations: []string{},
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	var first, last time.Time
	for _, sample := range samples {
		msgType := sample.Type
		if msgType == "" {
			msgType = "unknown"
		}
		report.MessageTypes[msgType]++
		if first.IsZero() || sample.ReceivedAt.Before(first) {
			first = sample.ReceivedAt
		}
		if sample.ReceivedAt.After(last) {
			last = sample.ReceivedAt
		}
	}
	if !first.IsZero() {
		report.DurationSeconds = last.Sub(first).Seconds()
	}

	if report.DurationSeconds > 0 {
		perSecond := float64(report.TotalMessages) / report.DurationSeconds
		switch {
		case perSecond > 10:
			report.Quality = "excellent"
		case perSecond > 5:
			report.Quality = "good"
		case perSecond > 1:
			report.Quality = "fair"
		default:
			report.Quality = "poor"
			report.Recommendations = append(report.Recommendations, "Low message throughput detected")
		}
	}

	if report.TotalMessages < 10 {
		report.Recommendations = append(report.Recommendations, "Very few messages exchanged - check server connectivity")
	}
	if report.MessageTypes["error"] > 0 {
		report.Recommendations = append(report.Recommendations, "Error messages detected - check server logs")
	}
	return report
}

// Render formats the report for terminal output and the saved file.
func (r Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session Channel Analysis Report\n")
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt)
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 50))
	fmt.Fprintf(&b, "Connection Statistics:\n")
	fmt.Fprintf(&b, "  total messages: %d\n", r.TotalMessages)
	fmt.Fprintf(&b, "  duration: %.2fs\n", r.DurationSeconds)
	fmt.Fprintf(&b, "  quality: %s\n\n", strings.ToUpper(r.Quality))

	if len(r.MessageTypes) > 0 {
		fmt.Fprintf(&b, "Message Types:\n")
		types := make([]string, 0, len(r.MessageTypes))
		for msgType := range r.MessageTypes {
			types = append(types, msgType)
		}
		sort.Strings(types)
		for _, msgType := range types {
			fmt.Fprintf(&b, "  %s: %d\n", msgType, r.MessageTypes[msgType])
		}
	}
	if len(r.Recommendations) > 0 {
		fmt.Fprintf(&b, "\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}
	return b.String()
}
