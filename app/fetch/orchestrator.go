package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// AdapterFailure records why one candidate in a fallback chain did not
// produce a result.
type AdapterFailure struct {
	Adapter string
	Reason  string
}

// UnavailableError is returned when every adapter in a fallback chain
// failed or came back empty. It carries each adapter's failure reason so
// callers can build an explanatory degraded response.
type UnavailableError struct {
	Capability string
	Failures   []AdapterFailure
}

func (e *UnavailableError) Error() string {
	reasons := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		reasons = append(reasons, fmt.Sprintf("%s: %s", f.Adapter, f.Reason))
	}
	return fmt.Sprintf("capability %s unavailable: %s", e.Capability, strings.Join(reasons, "; "))
}

// Orchestrator tries an ordered list of adapters for one logical capability.
type Orchestrator struct {
	capability string
}

func NewOrchestrator(capability string) *Orchestrator {
	return &Orchestrator{capability: capability}
}

// Fetch invokes adapters in order and returns the first result with a
// non-empty payload. An adapter that fetches successfully but yields no
// bytes is skipped like a failure, recorded as "empty payload". There are
// no per-adapter retries; the next poll cycle (cache TTL expiry) retries.
func (o *Orchestrator) Fetch(ctx context.Context, adapters ...Adapter) (*RawResult, error) {
	failures := make([]AdapterFailure, 0, len(adapters))

	for _, adapter := range adapters {
		result, err := adapter.Fetch(ctx)
		if err != nil {
			slog.Warn("Adapter failed, trying next candidate", "capability", o.capability, "adapter", adapter.Name(), "error", err)
			failures = append(failures, AdapterFailure{Adapter: adapter.Name(), Reason: err.Error()})
			continue
		}

		if len(result.Payload) == 0 {
			slog.Warn("Adapter returned empty payload, trying next candidate", "capability", o.capability, "adapter", adapter.Name())
			failures = append(failures, AdapterFailure{Adapter: adapter.Name(), Reason: "empty payload"})
			continue
		}

		return result, nil
	}

	return nil, &UnavailableError{Capability: o.capability, Failures: failures}
}
