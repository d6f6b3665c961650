package netcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPBandwidth estimates download throughput by streaming a
// fixed-size payload from a remote endpoint. The HTTP client is an
// injected capability: a nil client means the transport is unavailable
// and every measurement reports that as a failure rather than
// panicking or aborting the cycle.
type HTTPBandwidth struct {
	baseURL   string
	sizeBytes int
	client    *http.Client
}

func NewHTTPBandwidth(baseURL string, sizeKB int, client *http.Client) *HTTPBandwidth {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://httpbin.org"
	}
	if sizeKB <= 0 {
		sizeKB = 100
	}
	return &HTTPBandwidth{
		baseURL:   baseURL,
		sizeBytes: sizeKB * 1024,
		client:    client,
	}
}

// DefaultBandwidthClient builds the HTTP client used for bandwidth
// probes, with the transport instrumented for tracing.
func DefaultBandwidthClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Measure downloads the payload and returns throughput in kbit/s.
func (b *HTTPBandwidth) Measure(ctx context.Context) (float64, error) {
	if b.client == nil {
		return 0, errors.New("bandwidth transport unavailable")
	}

	url := fmt.Sprintf("%s/bytes/%d", b.baseURL, b.sizeBytes)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build bandwidth request: %w", err)
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("bandwidth download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("bandwidth download: unexpected status %d", resp.StatusCode)
	}

	received, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("bandwidth read: %w", err)
	}
	duration := time.Since(start).Seconds()
	if duration <= 0 || received == 0 {
		return 0, errors.New("bandwidth download: empty measurement")
	}

	kbps := float64(received) * 8 / (duration * 1000)
	return kbps, nil
}
