package netcheck

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPBandwidthMeasure(t *testing.T) {
	payload := bytes.Repeat([]byte{0xAB}, 64*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/bytes/") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	prober := NewHTTPBandwidth(server.URL, 64, server.Client())
	kbps, err := prober.Measure(context.Background())
	if err != nil {
		t.Fatalf("Measure returned error: %v", err)
	}
	if kbps <= 0 {
		t.Fatalf("expected positive throughput, got %f", kbps)
	}
}

func TestHTTPBandwidthCapabilityAbsent(t *testing.T) {
	prober := NewHTTPBandwidth("https://httpbin.org", 100, nil)
	if _, err := prober.Measure(context.Background()); err == nil {
		t.Fatalf("expected error when transport is unavailable")
	}
}

func TestHTTPBandwidthBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	prober := NewHTTPBandwidth(server.URL, 10, server.Client())
	if _, err := prober.Measure(context.Background()); err == nil {
		t.Fatalf("expected error for non-200 response")
	}
}
