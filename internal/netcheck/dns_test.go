package netcheck

import (
	"context"
	"testing"
	"time"
)

func TestTimedResolverAddressLiteral(t *testing.T) {
	resolver := &TimedResolver{}
	outcome := resolver.Resolve(context.Background(), "8.8.8.8", time.Second)
	if !outcome.OK {
		t.Fatalf("expected address literal to resolve, got %s", outcome.Err)
	}
	if outcome.LatencyMs < 0 {
		t.Fatalf("expected non-negative latency, got %f", outcome.LatencyMs)
	}
}

func TestTimedResolverCancelledContext(t *testing.T) {
	resolver := &TimedResolver{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := resolver.Resolve(ctx, "stun.l.google.com", time.Second)
	if outcome.OK {
		t.Fatalf("expected failure with cancelled context")
	}
}
