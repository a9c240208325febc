package weather

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
	"github.com/incidentph/hazardfeed/app/normalize"
	"github.com/incidentph/hazardfeed/app/store"
)

const sampleFeed = `Title: DOST_PAGASA on X
Pinned
Heavy Rainfall Warning #3 issued for Metro Manila, Rizal and Laguna as of 5:00 PM today.
Thunderstorm Advisory: moderate to heavy rainshowers expected over Bulacan within 2 hours.
Tropical Depression Ambo has entered the Philippine Area of Responsibility this morning.
Weather forecast for tomorrow shows partly cloudy skies over most of Luzon with isolated rains.
Follow
short line
`

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))

	appCfg := &cfg.Cfg{
		ProxyFeedBase: server.URL,
		WeatherHandle: "dost_pagasa",
		UserAgent:     "test",
	}

	alertLog, err := store.NewFileLog(t.TempDir(), "weather")
	if err != nil {
		t.Fatalf("NewFileLog failed: %v", err)
	}

	return NewService(appCfg, config.NewCache(t.TempDir()), cache.NewMemory(clock), alertLog, server.Client(), clock)
}

func TestService_UpdatesFilterNoiseAndShortLines(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	})

	result := service.Updates(context.Background())
	if result.Count != 4 {
		t.Fatalf("Expected 4 updates, got %d: %+v", result.Count, result.Updates)
	}
	for _, update := range result.Updates {
		if len(update.Text) < normalize.MinFeedLineLength {
			t.Errorf("Short line should have been discarded: %s", update.Text)
		}
	}
}

func TestService_UpdatesClassified(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	})

	result := service.Updates(context.Background())
	byText := make(map[string]normalize.Category)
	for _, update := range result.Updates {
		byText[update.Text] = update.Category
	}

	for text, category := range byText {
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "rainfall warning"):
			if category != normalize.CategoryWarning {
				t.Errorf("Rainfall warning classified as %s", category)
			}
		case strings.Contains(lower, "tropical depression"):
			if category != normalize.CategoryTropicalCyclone {
				t.Errorf("Tropical depression post classified as %s", category)
			}
		case strings.Contains(lower, "weather forecast"):
			if category != normalize.CategoryForecast {
				t.Errorf("Forecast post classified as %s", category)
			}
		}
	}
}

func TestService_SevereSplitsWarningsAndAdvisories(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	})

	severe := service.Severe(context.Background())
	if len(severe.Warnings) != 1 {
		t.Errorf("Expected 1 warning, got %d", len(severe.Warnings))
	}
	if len(severe.Advisories) != 1 {
		t.Errorf("Expected 1 advisory, got %d", len(severe.Advisories))
	}
	if severe.Count != 2 {
		t.Errorf("Expected total 2, got %d", severe.Count)
	}
}

func TestService_SevereWarningBeatsAdvisory(t *testing.T) {
	feed := "Severe Weather Advisory upgraded to a Warning for coastal towns facing the incoming surge tonight.\n"
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feed))
	})

	severe := service.Severe(context.Background())
	if len(severe.Warnings) != 1 || len(severe.Advisories) != 0 {
		t.Errorf("Text with both terms should count as warning, got %d warnings and %d advisories",
			len(severe.Warnings), len(severe.Advisories))
	}
}

func TestService_CyclonesMatchedByKeyword(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	})

	cyclones := service.Cyclones(context.Background())
	if cyclones.Count != 2 {
		t.Fatalf("Expected 2 cyclone updates (depression post and thunderstorm advisory), got %d", cyclones.Count)
	}
}

func TestService_DegradesOnTotalFailure(t *testing.T) {
	service := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	result := service.Updates(context.Background())
	if result.Count != 0 {
		t.Errorf("Expected no updates on failure, got %d", result.Count)
	}
	if result.Note == "" {
		t.Error("Degraded result should carry a note")
	}

	severe := service.Severe(context.Background())
	if severe.Note == "" {
		t.Error("Derived severe result should propagate the degradation note")
	}
}

func TestService_PersistsUpdates(t *testing.T) {
	dir := t.TempDir()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC))
	appCfg := &cfg.Cfg{ProxyFeedBase: server.URL, WeatherHandle: "dost_pagasa", UserAgent: "test"}

	alertLog, err := store.NewFileLog(dir, "weather")
	if err != nil {
		t.Fatalf("NewFileLog failed: %v", err)
	}

	service := NewService(appCfg, config.NewCache(t.TempDir()), cache.NewMemory(clock), alertLog, server.Client(), clock)
	service.Updates(context.Background())

	persisted, err := alertLog.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(persisted) != 4 {
		t.Errorf("Expected 4 persisted updates, got %d", len(persisted))
	}
}
