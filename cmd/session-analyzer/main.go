package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"netpulse/internal/session"
)

func main() {
	url := flag.String("url", envOr("NETPULSE_SESSION_URL", "ws://localhost:9000"), "Websocket URL of the companion session service")
	duration := flag.Duration("duration", 15*time.Second, "How long to keep the session channel open")
	outputPath := flag.String("out", "session_analysis.txt", "Write the rendered report to this file (empty to skip)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer := session.NewAnalyzer(*url, logger)
	logger.Info("starting session analysis", "url", *url, "duration", *duration)

	samples, err := analyzer.Collect(ctx, *duration)
	if err != nil {
		exitWith("analysis failed - make sure the session server is running: " + err.Error())
	}

	report := session.Analyze(samples)
	rendered := report.Render()
	fmt.Print(rendered)

	if strings.TrimSpace(*outputPath) != "" {
		if err := os.WriteFile(filepath.Clean(*outputPath), []byte(rendered), 0o644); err != nil {
			exitWith("failed to save report: " + err.Error())
		}
		logger.Info("report saved", "path", *outputPath)
	}
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
