package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"

	"netpulse/internal/netcheck"
)

type Observability struct {
	Tracer oteltrace.Tracer
	Meter  metric.Meter

	traceProvider *sdktrace.TracerProvider
	CycleCounter  metric.Int64Counter
	ProbeDuration metric.Float64Histogram
	ProbeFailures metric.Int64Counter
	PacketLoss    metric.Float64Gauge
}

func SetupObservability(ctx context.Context, cfg ObservabilityConfig) (*Observability, error) {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "netpulse"
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build otel resource: %w", err)
	}
	sampler := sdktrace.TraceIDRatioBased(cfg.SampleRatio)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)
	if cfg.OTLPEndpoint != "" {
		exporter, exportErr := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if exportErr != nil {
			return nil, fmt.Errorf("create otlp trace exporter: %w", exportErr)
		}
		tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sampler),
		)
	} else {
		slog.Info("otel trace exporter not configured; using local tracer provider")
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	meter := otel.Meter(serviceName)
	tracer := otel.Tracer(serviceName)
	cycleCounter, _ := meter.Int64Counter("netpulse_cycle_total")
	probeDuration, _ := meter.Float64Histogram("netpulse_probe_duration_ms")
	probeFailures, _ := meter.Int64Counter("netpulse_probe_failures_total")
	packetLoss, _ := meter.Float64Gauge("netpulse_packet_loss_percent")
	return &Observability{
		Tracer:        tracer,
		Meter:         meter,
		traceProvider: tp,
		CycleCounter:  cycleCounter,
		ProbeDuration: probeDuration,
		ProbeFailures: probeFailures,
		PacketLoss:    packetLoss,
	}, nil
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.traceProvider == nil {
		return nil
	}
	return o.traceProvider.Shutdown(ctx)
}

// StartCycle opens a span covering one measurement cycle. Safe on a
// nil receiver, in which case a pass-through span is returned.
func (o *Observability) StartCycle(ctx context.Context) (context.Context, oteltrace.Span) {
	if o == nil || o.Tracer == nil {
		return ctx, oteltrace.SpanFromContext(ctx)
	}
	return o.Tracer.Start(ctx, "monitor.cycle")
}

func (o *Observability) MarkCycle(ctx context.Context) {
	if o == nil {
		return
	}
	o.CycleCounter.Add(ctx, 1)
}

func (o *Observability) MarkProbe(ctx context.Context, kind, target string, outcome netcheck.Outcome) {
	if o == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("target", target),
	)
	if outcome.OK {
		o.ProbeDuration.Record(ctx, outcome.LatencyMs, attrs)
		return
	}
	o.ProbeFailures.Add(ctx, 1, attrs)
}

func (o *Observability) RecordStats(ctx context.Context, stats Stats) {
	if o == nil {
		return
	}
	o.PacketLoss.Record(ctx, stats.PacketLossPct)
}
