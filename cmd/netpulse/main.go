package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"netpulse/internal/monitor"
	"netpulse/internal/netcheck"
)

func main() {
	configPath := flag.String("config", envOr("NETPULSE_CONFIG", ""), "Path to yaml/json config file")
	targets := flag.String("targets", "", "Comma-separated targets to ping (overrides config)")
	interval := flag.Float64("interval", 0, "Test interval in seconds (overrides config)")
	duration := flag.Float64("duration", 0, "Total test duration in seconds (0 = until interrupted)")
	single := flag.Bool("single", false, "Run a single test cycle instead of continuous monitoring")
	pingMode := flag.String("ping-mode", "", "Reachability probe mode: system|icmp (overrides config)")
	dsn := flag.String("db", envOr("NETPULSE_DB_DSN", ""), "Postgres DSN for cycle history (overrides config)")
	outputPath := flag.String("out", "", "Write results document JSON to this file")
	format := flag.String("format", "text", "Output format: text|json")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := monitor.LoadConfig(*configPath)
	if err != nil {
		exitWith("failed to load config: " + err.Error())
	}
	if strings.TrimSpace(*targets) != "" {
		cfg.Targets = splitList(*targets)
	}
	if *interval > 0 {
		cfg.IntervalSeconds = *interval
	}
	if *duration > 0 {
		cfg.DurationSeconds = *duration
	}
	if strings.TrimSpace(*pingMode) != "" {
		cfg.PingMode = *pingMode
	}
	if strings.TrimSpace(*dsn) != "" {
		cfg.Database.DSN = *dsn
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := monitor.SetupObservability(ctx, cfg.Observer)
	if err != nil {
		exitWith("failed to set up observability: " + err.Error())
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	orchestrator, err := monitor.NewOrchestrator(cfg, buildProbes(cfg), obs, logger)
	if err != nil {
		exitWith("failed to build orchestrator: " + err.Error())
	}

	stats := &monitor.Stats{}
	aggregator := monitor.NewAggregator(stats)

	var store *monitor.PgHistory
	if strings.TrimSpace(cfg.Database.DSN) != "" {
		store, err = monitor.OpenPgHistory(ctx, cfg.Database)
		if err != nil {
			exitWith("failed to open history database: " + err.Error())
		}
		defer store.Close()
	}

	textOutput := strings.ToLower(strings.TrimSpace(*format)) != "json"
	var history []monitor.Report

	if *single {
		report := orchestrator.RunCycle(ctx)
		aggregator.Update(report)
		obs.RecordStats(ctx, *stats)
		history = append(history, report)
		if store != nil {
			if err := store.AppendCycle(ctx, report); err != nil {
				logger.Warn("failed to persist cycle", "error", err)
			}
		}
		if textOutput {
			printCycle(report)
		}
	} else {
		loop := monitor.NewLoop(orchestrator, aggregator, cfg.Interval(), cfg.Duration(), logger)
		loop.OnCycle = func(report monitor.Report, current monitor.Stats) {
			obs.RecordStats(ctx, current)
			if store != nil {
				if err := store.AppendCycle(ctx, report); err != nil {
					logger.Warn("failed to persist cycle", "error", err)
				}
			}
			if textOutput {
				printCycle(report)
			}
		}
		if textOutput {
			fmt.Printf("Starting network performance monitor (interval %.1fs)\n", cfg.IntervalSeconds)
			fmt.Println("Press Ctrl+C to stop")
		}
		_ = loop.Run(ctx)
		history = loop.History()
	}

	assessment := monitor.Assess(*stats)
	document := monitor.BuildDocument(history, stats)

	if textOutput {
		printSummary(*stats)
		printAssessment(assessment)
	} else {
		printJSON(document, assessment)
	}

	if strings.TrimSpace(*outputPath) != "" {
		if err := monitor.WriteDocument(*outputPath, document); err != nil {
			exitWith("failed to write results: " + err.Error())
		}
		logger.Info("results saved", "path", *outputPath)
	}
	if store != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.SaveSnapshot(saveCtx, stats); err != nil {
			logger.Warn("failed to persist final snapshot", "error", err)
		}
	}
}

func buildProbes(cfg monitor.Config) monitor.Probes {
	probes := monitor.Probes{
		Dialer:   netcheck.TCPDialer{},
		Resolver: netcheck.NewTimedResolver(),
	}
	if cfg.PingMode == monitor.PingModeICMP {
		probes.Pinger = netcheck.ICMPPinger{}
	} else {
		probes.Pinger = netcheck.ExecPinger{}
	}
	if !cfg.Bandwidth.Disabled {
		client := netcheck.DefaultBandwidthClient(cfg.BandwidthTimeout())
		probes.Bandwidth = netcheck.NewHTTPBandwidth(cfg.Bandwidth.Endpoint, cfg.Bandwidth.SizeKB, client)
	}
	return probes
}

func printCycle(report monitor.Report) {
	fmt.Printf("\nNetwork Test Results - %s\n", report.Timestamp.Format(time.RFC3339))
	fmt.Println(strings.Repeat("=", 60))

	fmt.Println("Ping Results:")
	for target, outcome := range report.Ping {
		if outcome.OK {
			fmt.Printf("  %-24s %.1fms\n", target, outcome.LatencyMs)
		} else {
			fmt.Printf("  %-24s TIMEOUT\n", target)
		}
	}

	fmt.Println("TCP Connection Results:")
	for _, result := range report.TCP {
		if result.Outcome.OK {
			fmt.Printf("  %-24s %.1fms\n", result.Label, result.Outcome.LatencyMs)
		} else {
			fmt.Printf("  %-24s FAILED\n", result.Label)
		}
	}

	if report.BandwidthKbps != nil {
		fmt.Printf("Bandwidth: %.2f Mbps\n", *report.BandwidthKbps/1000)
	} else {
		fmt.Println("Bandwidth: FAILED")
	}

	fmt.Println("DNS Resolution:")
	for target, outcome := range report.DNS {
		if outcome.OK {
			fmt.Printf("  %-24s %.1fms\n", target, outcome.LatencyMs)
		} else {
			fmt.Printf("  %-24s FAILED\n", target)
		}
	}
}

func printSummary(stats monitor.Stats) {
	fmt.Println("\nSummary Statistics:")
	fmt.Println(strings.Repeat("=", 40))
	fmt.Printf("Total Tests: %d\n", stats.TotalCycles)
	fmt.Printf("Successful Pings: %d\n", stats.SuccessfulPings)
	fmt.Printf("Failed Pings: %d\n", stats.FailedPings)
	fmt.Printf("Packet Loss: %.1f%%\n", stats.PacketLossPct)
	if stats.HasLatencySamples() {
		fmt.Printf("Min Latency: %.1fms\n", stats.MinLatencyMs)
		fmt.Printf("Avg Latency: %.1fms\n", stats.AvgLatencyMs)
		fmt.Printf("Max Latency: %.1fms\n", stats.MaxLatencyMs)
	}
}

func printAssessment(assessment monitor.Assessment) {
	fmt.Printf("\nRemote Desktop Readiness: %s\n", strings.ToUpper(string(assessment.Overall)))
	fmt.Printf("  latency: %s\n", assessment.Latency)
	fmt.Printf("  stability: %s\n", assessment.Stability)
	if len(assessment.Recommendations) > 0 {
		fmt.Println("Recommendations:")
		for _, rec := range assessment.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
}

func printJSON(document monitor.Document, assessment monitor.Assessment) {
	payload := struct {
		monitor.Document
		Readiness monitor.Assessment `json:"readiness"`
	}{Document: document, Readiness: assessment}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		exitWith("failed to encode results JSON: " + err.Error())
	}
	fmt.Println(string(data))
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func exitWith(message string) {
	fmt.Fprintln(os.Stderr, "error:", message)
	os.Exit(2)
}
