package monitor

import (
	"context"
	"log/slog"
	"time"
)

// CycleRunner abstracts the orchestrator for the loop.
type CycleRunner interface {
	RunCycle(ctx context.Context) Report
}

// Loop repeatedly runs measurement cycles at a fixed interval,
// optionally bounded by a total duration. A cycle in flight always
// completes and is applied to the stats in full before the loop
// observes cancellation; cycles never overlap.
type Loop struct {
	runner      CycleRunner
	aggregator  *Aggregator
	interval    time.Duration
	maxDuration time.Duration
	logger      *slog.Logger

	// OnCycle, when set, is called after each cycle has been folded
	// into the stats. The stats value is a copy; mutating it has no
	// effect on the loop.
	OnCycle func(report Report, stats Stats)

	history []Report
}

func NewLoop(runner CycleRunner, aggregator *Aggregator, interval, maxDuration time.Duration, logger *slog.Logger) *Loop {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		runner:      runner,
		aggregator:  aggregator,
		interval:    interval,
		maxDuration: maxDuration,
		logger:      logger,
	}
}

// Run blocks until the configured duration elapses or ctx is
// cancelled. Cancellation is the normal way to stop an unbounded run,
// so it is not reported as an error.
func (l *Loop) Run(ctx context.Context) error {
	start := time.Now()
	l.logger.Info("monitor loop started", "interval", l.interval, "max_duration", l.maxDuration)

	for {
		if l.maxDuration > 0 && time.Since(start) > l.maxDuration {
			l.logger.Info("monitor duration elapsed", "cycles", l.aggregator.stats.TotalCycles)
			return nil
		}
		select {
		case <-ctx.Done():
			l.logger.Info("monitor loop cancelled", "cycles", l.aggregator.stats.TotalCycles)
			return nil
		default:
		}

		report := l.runner.RunCycle(ctx)
		l.aggregator.Update(report)
		l.history = append(l.history, report)
		if l.OnCycle != nil {
			l.OnCycle(report, *l.aggregator.stats)
		}

		timer := time.NewTimer(l.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.logger.Info("monitor loop cancelled", "cycles", l.aggregator.stats.TotalCycles)
			return nil
		case <-timer.C:
		}
	}
}

// History returns a copy of all reports collected so far. Call only
// after Run has returned.
func (l *Loop) History() []Report {
	out := make([]Report, len(l.history))
	copy(out, l.history)
	return out
}

// Stats returns a copy of the cumulative stats.
func (l *Loop) Stats() Stats {
	return *l.aggregator.stats
}
