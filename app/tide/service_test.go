package tide

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/incidentph/hazardfeed/app/cache"
	"github.com/incidentph/hazardfeed/app/cfg"
	"github.com/incidentph/hazardfeed/app/config"
)

const servicePage = `<table class="tide-day-tides">
<tr><td>Low Tide</td><td>7:00 AM (Sat 14 March)</td><td>0.40 m</td></tr>
<tr><td>High Tide</td><td>1:00 PM (Sat 14 March)</td><td>1.60 m</td></tr>
<tr><td>Low Tide</td><td>7:30 PM (Sat 14 March)</td><td>0.35 m</td></tr>
</table>`

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *clockwork.FakeClock) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	// 10:00 local, between the morning low and the afternoon high.
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))

	appCfg := &cfg.Cfg{
		TideBaseURL:         server.URL,
		UserAgent:           "test",
		TideRangeLowMeters:  0.3,
		TideRangeHighMeters: 2.0,
	}

	return NewService(appCfg, config.NewCache(t.TempDir()), cache.NewMemory(clock), server.Client(), clock), clock
}

func TestService_Forecast(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(servicePage))
	})

	location, ok := FindLocation("cebu-city")
	if !ok {
		t.Fatal("cebu-city should be in the catalog")
	}

	forecast := service.Forecast(context.Background(), location)
	if forecast.Count != 3 {
		t.Fatalf("Expected 3 events, got %d", forecast.Count)
	}
	if forecast.Location.Slug != "cebu-city" {
		t.Errorf("Unexpected location: %s", forecast.Location.Slug)
	}
}

func TestService_CurrentRisingWithEstimate(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(servicePage))
	})

	location, _ := FindLocation("manila-bay")
	current := service.Current(context.Background(), location)

	if current.State.Trend != "Rising" {
		t.Errorf("At 10:00 between a low and a high the tide is rising, got %s", current.State.Trend)
	}
	if current.State.TimeToNext != "3h0m" {
		t.Errorf("Expected 3h0m to the 1 PM high, got %s", current.State.TimeToNext)
	}
	if current.Estimate == nil {
		t.Fatal("Expected a height estimate between bracketing events")
	}
	// Halfway from 0.40 to 1.60.
	if current.Estimate.HeightM != 1.0 {
		t.Errorf("Expected 1.0 m, got %v", current.Estimate.HeightM)
	}
}

func TestService_ForecastFailureDegrades(t *testing.T) {
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	location, _ := FindLocation("subic-bay")
	forecast := service.Forecast(context.Background(), location)
	if forecast.Count != 0 {
		t.Errorf("Expected no events on failure, got %d", forecast.Count)
	}
	if forecast.Note == "" {
		t.Error("Degraded forecast should carry a note")
	}

	current := service.Current(context.Background(), location)
	if current.State.Trend != "Unknown" {
		t.Errorf("Analyzer over an empty forecast should report Unknown, got %s", current.State.Trend)
	}
	if current.Estimate != nil {
		t.Error("Expected no estimate without events")
	}
}

func TestService_ForecastCachedWithinTTL(t *testing.T) {
	calls := 0
	service, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(servicePage))
	})

	location, _ := FindLocation("davao-gulf")
	service.Forecast(context.Background(), location)
	service.Current(context.Background(), location)

	if calls != 1 {
		t.Errorf("Expected 1 upstream call within TTL, got %d", calls)
	}
}

func TestFindLocation_Unknown(t *testing.T) {
	if _, ok := FindLocation("atlantis"); ok {
		t.Error("Unknown slug should not resolve")
	}
}

func TestLocations_Catalog(t *testing.T) {
	catalog := Locations()
	if len(catalog) != 6 {
		t.Errorf("Expected 6 stations, got %d", len(catalog))
	}
}
