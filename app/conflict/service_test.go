package conflict

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/incidentph/hazardfeed/app/cache"
	"github.com/incidentph/hazardfeed/app/cfg"
	"github.com/incidentph/hazardfeed/app/config"
)

const acledBody = `{
  "data": [
    {"event_date": "2026-03-10", "event_type": "Riots", "location": "Quezon City", "admin1": "Metro Manila", "fatalities": "0"},
    {"event_date": "2026-03-13", "event_type": "Protests", "location": "Cebu City", "admin1": "Cebu", "fatalities": "0"},
    {"event_date": "2026-03-11", "event_type": "Violence against civilians", "location": "Cotabato", "admin1": "Maguindanao", "fatalities": "2"}
  ]
}`

func newTestService(t *testing.T, withCredentials bool, handler http.HandlerFunc) *Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))
	appCfg := &cfg.Cfg{
		ACLEDAPIURL: server.URL,
		UserAgent:   "test",
	}
	if withCredentials {
		appCfg.ACLEDEmail = "someone@example.com"
		appCfg.ACLEDKey = "secret"
	}

	return NewService(appCfg, config.NewCache(t.TempDir()), cache.NewMemory(clock), server.Client(), clock)
}

func TestService_PlaceholderWithoutCredentials(t *testing.T) {
	called := false
	service := newTestService(t, false, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	result := service.Incidents(context.Background(), 50)
	if result.Count != 0 {
		t.Errorf("Expected no incidents, got %d", result.Count)
	}
	if !strings.Contains(result.Note, "credentials") {
		t.Errorf("Placeholder note should explain missing credentials: %s", result.Note)
	}
	if called {
		t.Error("Upstream must not be called without credentials")
	}
}

func TestService_IncidentsSortedByDateDesc(t *testing.T) {
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(acledBody))
	})

	result := service.Incidents(context.Background(), 50)
	if result.Count != 3 {
		t.Fatalf("Expected 3 incidents, got %d", result.Count)
	}
	if result.Incidents[0].EventDate != "2026-03-13" {
		t.Errorf("Expected newest first, got %s", result.Incidents[0].EventDate)
	}
	if result.Incidents[2].EventDate != "2026-03-10" {
		t.Errorf("Expected oldest last, got %s", result.Incidents[2].EventDate)
	}
}

func TestService_QueryCarriesCredentialsAndLimit(t *testing.T) {
	var query map[string][]string
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(acledBody))
	})

	service.Incidents(context.Background(), 25)

	if got := query["country"]; len(got) != 1 || got[0] != "Philippines" {
		t.Errorf("Expected country=Philippines, got %v", got)
	}
	if got := query["limit"]; len(got) != 1 || got[0] != "25" {
		t.Errorf("Expected limit=25, got %v", got)
	}
	if got := query["email"]; len(got) != 1 || got[0] != "someone@example.com" {
		t.Errorf("Expected registered email, got %v", got)
	}
}

func TestService_FailureDegrades(t *testing.T) {
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	result := service.Incidents(context.Background(), 50)
	if result.Count != 0 {
		t.Errorf("Expected no incidents, got %d", result.Count)
	}
	if result.Note == "" {
		t.Error("Degraded result should carry a note")
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 50},
		{-5, 50},
		{1, 1},
		{200, 200},
		{500, 200},
	}
	for _, tt := range tests {
		if got := ClampLimit(tt.in); got != tt.want {
			t.Errorf("ClampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
