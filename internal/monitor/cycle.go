package monitor

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"netpulse/internal/netcheck"
)

// Probes bundles the collaborators the orchestrator fans out to. A nil
// Bandwidth prober means the bulk-transfer capability is absent; the
// other fields must be set.
type Probes struct {
	Pinger    netcheck.Pinger
	Dialer    netcheck.Dialer
	Bandwidth netcheck.BandwidthProber
	Resolver  netcheck.Resolver
}

// Orchestrator runs one full measurement cycle: concurrent
// reachability probes over every target, sequential transport-connect
// probes, one bulk-transfer probe and name resolution over the first
// two targets. Probe failures are captured as outcomes, never
// propagated as errors; no sub-phase aborts another.
type Orchestrator struct {
	targets    []string
	tcpTargets []TCPTarget
	probes     Probes

	pingTimeout time.Duration
	tcpTimeout  time.Duration
	dnsTimeout  time.Duration

	obs    *Observability
	logger *slog.Logger
}

func NewOrchestrator(cfg Config, probes Probes, obs *Observability, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tcpTargets, err := ParseTCPTargets(cfg.TCPTargets)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		targets:     append([]string(nil), cfg.Targets...),
		tcpTargets:  tcpTargets,
		probes:      probes,
		pingTimeout: secondsOr(cfg.PingTimeoutSeconds, 3*time.Second),
		tcpTimeout:  secondsOr(cfg.TCPTimeoutSeconds, 3*time.Second),
		dnsTimeout:  secondsOr(cfg.DNSTimeoutSeconds, 3*time.Second),
		obs:         obs,
		logger:      logger,
	}, nil
}

// Targets returns the configured reachability target list.
func (o *Orchestrator) Targets() []string {
	return append([]string(nil), o.targets...)
}

// RunCycle executes all four sub-phases and assembles the report. Each
// sub-phase runs to completion before the next starts, and the report
// is only returned once every outcome has settled.
func (o *Orchestrator) RunCycle(ctx context.Context) Report {
	ctx, span := o.obs.StartCycle(ctx)
	defer span.End()

	report := Report{
		Timestamp: time.Now().UTC(),
		Ping:      make(map[string]netcheck.Outcome, len(o.targets)),
		DNS:       make(map[string]netcheck.Outcome, 2),
	}

	o.runPingPhase(ctx, &report)
	o.runTCPPhase(ctx, &report)
	o.runBandwidthPhase(ctx, &report)
	o.runDNSPhase(ctx, &report)

	o.obs.MarkCycle(ctx)
	return report
}

// runPingPhase fans out one reachability probe per target and joins on
// all of them; results stay associated with their target by index.
func (o *Orchestrator) runPingPhase(ctx context.Context, report *Report) {
	outcomes := make([]netcheck.Outcome, len(o.targets))

	group, gctx := errgroup.WithContext(ctx)
	for i, target := range o.targets {
		i, target := i, target
		group.Go(func() error {
			outcomes[i] = o.probes.Pinger.Ping(gctx, target, o.pingTimeout)
			return nil
		})
	}
	_ = group.Wait()

	for i, target := range o.targets {
		report.Ping[target] = outcomes[i]
		o.obs.MarkProbe(ctx, "ping", target, outcomes[i])
		if !outcomes[i].OK {
			o.logger.Debug("ping probe failed", "target", target, "error", outcomes[i].Err)
		}
	}
}

// runTCPPhase is sequential by contract: report ordering mirrors the
// configured target list.
func (o *Orchestrator) runTCPPhase(ctx context.Context, report *Report) {
	for _, target := range o.tcpTargets {
		outcome := o.probes.Dialer.Dial(ctx, target.Host, target.Port, o.tcpTimeout)
		report.TCP = append(report.TCP, TCPResult{Label: target.Label(), Outcome: outcome})
		o.obs.MarkProbe(ctx, "tcp", target.Label(), outcome)
		if !outcome.OK {
			o.logger.Debug("tcp probe failed", "target", target.Label(), "error", outcome.Err)
		}
	}
}

func (o *Orchestrator) runBandwidthPhase(ctx context.Context, report *Report) {
	if o.probes.Bandwidth == nil {
		o.logger.Debug("bandwidth prober not configured; skipping sub-phase")
		return
	}
	kbps, err := o.probes.Bandwidth.Measure(ctx)
	if err != nil {
		o.logger.Warn("bandwidth probe failed", "error", err)
		return
	}
	report.BandwidthKbps = &kbps
}

func (o *Orchestrator) runDNSPhase(ctx context.Context, report *Report) {
	count := len(o.targets)
	if count > 2 {
		count = 2
	}
	for _, target := range o.targets[:count] {
		outcome := o.probes.Resolver.Resolve(ctx, target, o.dnsTimeout)
		report.DNS[target] = outcome
		o.obs.MarkProbe(ctx, "dns", target, outcome)
		if !outcome.OK {
			o.logger.Debug("dns probe failed", "target", target, "error", outcome.Err)
		}
	}
}

func secondsOr(seconds float64, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds * float64(time.Second))
}
