package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubAdapter struct {
	name    string
	payload []byte
	err     error
	calls   int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Fetch(ctx context.Context) (*RawResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &RawResult{
		SourceID:  s.name,
		Kind:      KindText,
		Payload:   s.payload,
		FetchedAt: time.Now(),
	}, nil
}

func TestOrchestrator_FirstSuccessWins(t *testing.T) {
	primary := &stubAdapter{name: "primary", payload: []byte("data")}
	secondary := &stubAdapter{name: "secondary", payload: []byte("other")}

	result, err := NewOrchestrator("posts").Fetch(context.Background(), primary, secondary)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.SourceID != "primary" {
		t.Errorf("Expected primary to win, got %s", result.SourceID)
	}
	if secondary.calls != 0 {
		t.Error("Secondary should not be invoked when primary succeeds")
	}
}

func TestOrchestrator_FallsThroughOnError(t *testing.T) {
	primary := &stubAdapter{name: "primary", err: errors.New("connection refused")}
	secondary := &stubAdapter{name: "secondary", payload: []byte("data")}

	result, err := NewOrchestrator("posts").Fetch(context.Background(), primary, secondary)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.SourceID != "secondary" {
		t.Errorf("Expected fallback to secondary, got %s", result.SourceID)
	}
}

func TestOrchestrator_EmptyPayloadFallsThrough(t *testing.T) {
	primary := &stubAdapter{name: "primary", payload: nil}
	secondary := &stubAdapter{name: "secondary", payload: []byte("data")}

	result, err := NewOrchestrator("posts").Fetch(context.Background(), primary, secondary)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.SourceID != "secondary" {
		t.Errorf("Expected empty primary payload to fall through, got %s", result.SourceID)
	}
}

func TestOrchestrator_AllFailedCarriesEveryReason(t *testing.T) {
	primary := &stubAdapter{name: "primary", err: errors.New("timeout")}
	secondary := &stubAdapter{name: "secondary", err: errors.New("http error: 503")}

	_, err := NewOrchestrator("posts").Fetch(context.Background(), primary, secondary)
	if err == nil {
		t.Fatal("Expected error when all adapters fail")
	}

	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Expected UnavailableError, got %T", err)
	}
	if len(unavailable.Failures) != 2 {
		t.Fatalf("Expected 2 recorded failures, got %d", len(unavailable.Failures))
	}
	if !strings.Contains(unavailable.Error(), "timeout") || !strings.Contains(unavailable.Error(), "503") {
		t.Errorf("Error message should carry every adapter's reason: %s", unavailable.Error())
	}
}

func TestProxyFeedURL(t *testing.T) {
	tests := []struct {
		base   string
		handle string
		want   string
	}{
		{"https://r.jina.ai/https://x.com", "mmda", "https://r.jina.ai/https://x.com/mmda"},
		{"https://r.jina.ai/https://x.com/", "mmda", "https://r.jina.ai/https://x.com/mmda"},
		{"https://proxy.example.com/feed/{handle}/latest", "dost_pagasa", "https://proxy.example.com/feed/dost_pagasa/latest"},
	}

	for _, tt := range tests {
		if got := ProxyFeedURL(tt.base, tt.handle); got != tt.want {
			t.Errorf("ProxyFeedURL(%q, %q) = %q, want %q", tt.base, tt.handle, got, tt.want)
		}
	}
}
