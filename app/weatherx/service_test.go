package weatherx

import (
	"context"
	"encoding/json"
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

const oneCallBody = `{
  "lat": 14.6, "lon": 120.98,
  "current": {"temp": 31.2},
  "alerts": [
    {"sender_name": "PAGASA", "event": "Typhoon Warning Signal #3", "start": 1770000000, "end": 1770050000, "description": "Typhoon approaching northern Luzon"},
    {"sender_name": "PAGASA", "event": "Heat Index Advisory", "start": 1770000000, "end": 1770050000, "description": "Danger level heat index expected"}
  ]
}`

func newTestService(t *testing.T, keys bool, handler http.HandlerFunc) *Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))
	appCfg := &cfg.Cfg{
		OpenWeatherURL:  server.URL,
		QWeatherBaseURL: server.URL,
		WindyBaseURL:    server.URL,
		UserAgent:       "test",
	}
	if keys {
		appCfg.OpenWeatherKey = "ow-key"
		appCfg.QWeatherKey = "qw-key"
		appCfg.WindyKey = "windy-key"
	}

	return NewService(appCfg, config.NewCache(t.TempDir()), cache.NewMemory(clock), server.Client(), clock)
}

func TestService_OneCallPrefersV3(t *testing.T) {
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/3.0/") {
			w.Write([]byte(oneCallBody))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	result := service.OneCall(context.Background(), 14.5995, 120.9842)
	if result.APIVersion != "3.0" {
		t.Errorf("Expected 3.0 to serve, got %s", result.APIVersion)
	}
	if result.Data == nil {
		t.Error("Expected payload data")
	}
}

func TestService_OneCallFallsBackToV25(t *testing.T) {
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/3.0/") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(oneCallBody))
	})

	result := service.OneCall(context.Background(), 14.5995, 120.9842)
	if result.APIVersion != "2.5" {
		t.Errorf("Expected 2.5 fallback for unauthorized 3.0, got %s", result.APIVersion)
	}
}

func TestService_OneCallWithoutKey(t *testing.T) {
	called := false
	service := newTestService(t, false, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	result := service.OneCall(context.Background(), 14.5995, 120.9842)
	if result.Data != nil {
		t.Error("Expected no data without a key")
	}
	if !strings.Contains(result.Note, "API key") {
		t.Errorf("Note should explain the missing key: %s", result.Note)
	}
	if called {
		t.Error("Upstream must not be called without a key")
	}
}

func TestService_AlertsSplitTyphoonRelated(t *testing.T) {
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(oneCallBody))
	})

	result := service.Alerts(context.Background(), 14.5995, 120.9842)
	if result.Count != 2 {
		t.Fatalf("Expected 2 alerts, got %d", result.Count)
	}
	if len(result.TyphoonRelated) != 1 {
		t.Fatalf("Expected 1 typhoon-related alert, got %d", len(result.TyphoonRelated))
	}
	if !strings.Contains(result.TyphoonRelated[0].Event, "Typhoon") {
		t.Errorf("Unexpected typhoon alert: %+v", result.TyphoonRelated[0])
	}
}

func TestService_QWeatherWarnings(t *testing.T) {
	var gotLocation string
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		gotLocation = r.URL.Query().Get("location")
		w.Write([]byte(`{"code": "200", "warning": [{"title": "Typhoon Yellow Warning", "typeName": "Typhoon", "severity": "Yellow"}]}`))
	})

	result := service.Warnings(context.Background(), 14.5995, 120.9842)
	if result.Count != 1 {
		t.Fatalf("Expected 1 warning, got %d", result.Count)
	}
	// QWeather takes lon,lat order.
	if gotLocation != "120.98,14.60" {
		t.Errorf("Expected location 120.98,14.60, got %s", gotLocation)
	}
}

func TestService_QWeatherErrorCode(t *testing.T) {
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": "402"}`))
	})

	result := service.Warnings(context.Background(), 14.5995, 120.9842)
	if result.Note == "" {
		t.Error("Non-200 QWeather code should degrade with a note")
	}
}

func TestService_WindyPostsPointRequest(t *testing.T) {
	var body map[string]interface{}
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"ts": [1770000000], "wind_u-surface": [4.2]}`))
	})

	result := service.Windy(context.Background(), 14.5995, 120.9842)
	if result.Data == nil {
		t.Fatal("Expected payload data")
	}
	if body["model"] != "gfs" {
		t.Errorf("Expected gfs model, got %v", body["model"])
	}
	if body["key"] != "windy-key" {
		t.Errorf("Expected API key in body, got %v", body["key"])
	}
}

func TestService_ResultsCachedPerRoundedPoint(t *testing.T) {
	calls := 0
	service := newTestService(t, true, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(oneCallBody))
	})

	// Both points round to the same 2-decimal cache key.
	service.OneCall(context.Background(), 14.5995, 120.9842)
	service.OneCall(context.Background(), 14.6011, 120.9820)

	if calls != 1 {
		t.Errorf("Nearby points should share a cache entry, got %d upstream calls", calls)
	}
}
