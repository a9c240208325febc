package tide

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/incidentph/hazardfeed/app/cache"
	"github.com/incidentph/hazardfeed/app/cfg"
	"github.com/incidentph/hazardfeed/app/config"
	"github.com/incidentph/hazardfeed/app/fetch"
)

const (
	sourceName   = "tide-forecast.com"
	defaultTTL   = 6 * time.Hour
	fetchTimeout = 25 * time.Second
)

// locations is the supported station catalog. Slugs map to tide-forecast
// location paths.
var locations = []Location{
	{Slug: "cordova-1", Name: "Cordova"},
	{Slug: "manila-bay", Name: "Manila Bay"},
	{Slug: "cebu-city", Name: "Cebu City"},
	{Slug: "davao-gulf", Name: "Davao Gulf"},
	{Slug: "subic-bay", Name: "Subic Bay"},
	{Slug: "puerto-princesa", Name: "Puerto Princesa"},
}

type Service struct {
	cfg     *cfg.Cfg
	sources *config.Cache
	cache   cache.Store
	client  *http.Client
	clock   clockwork.Clock
}

func NewService(appCfg *cfg.Cfg, sources *config.Cache, cacheStore cache.Store, client *http.Client, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		cfg:     appCfg,
		sources: sources,
		cache:   cacheStore,
		client:  client,
		clock:   clock,
	}
}

// Locations returns the supported station catalog.
func Locations() []Location {
	out := make([]Location, len(locations))
	copy(out, locations)
	return out
}

// FindLocation resolves a station by slug.
func FindLocation(slug string) (Location, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, location := range locations {
		if location.Slug == slug {
			return location, true
		}
	}
	return Location{}, false
}

func (s *Service) ttl() time.Duration {
	if s.cfg.CacheTTLOverride > 0 {
		return time.Duration(s.cfg.CacheTTLOverride) * time.Second
	}
	return s.sources.TTL("tides", defaultTTL)
}

// Forecast returns the scraped tide table for one station, cache-first.
// Total failure degrades to an empty event list with a note.
func (s *Service) Forecast(ctx context.Context, location Location) Forecast {
	key := "tide:forecast:" + location.Slug
	forecast, err := cache.Fetch(ctx, s.cache, key, s.ttl(), func(ctx context.Context) (Forecast, error) {
		return s.fill(ctx, location)
	})
	if err != nil {
		slog.Error("Tide forecast fetch failed", "location", location.Slug, "error", err)
		return Forecast{
			Location: location,
			Events:   []Event{},
			Count:    0,
			Source:   sourceName,
			Note:     "Tide forecast is temporarily unavailable: " + err.Error(),
		}
	}
	return forecast
}

func (s *Service) fill(ctx context.Context, location Location) (Forecast, error) {
	pageURL := s.cfg.TideBaseURL + "/" + location.Slug + "/tides/latest"
	timeout := s.sources.Timeout("tides", fetchTimeout)

	adapter := fetch.NewHTTPAdapter("tides:"+location.Slug, pageURL, fetch.KindHTML, s.client, timeout, s.cfg.UserAgent, s.clock)
	raw, err := fetch.NewOrchestrator("tide forecast").Fetch(ctx, adapter)
	if err != nil {
		return Forecast{}, err
	}

	events, err := ParseForecast(string(raw.Payload))
	if err != nil {
		return Forecast{}, err
	}

	forecast := Forecast{
		Location: location,
		Events:   events,
		Count:    len(events),
		Source:   sourceName,
	}
	if len(events) == 0 {
		forecast.Note = "No tide rows found on the forecast page"
	}

	slog.Info("Tide forecast refreshed", "location", location.Slug, "events", len(events))
	return forecast, nil
}

// Current runs the timeline analyzer over a station's forecast: trend and
// time to the next extreme, plus an interpolated height when the current
// moment is bracketed by two events.
func (s *Service) Current(ctx context.Context, location Location) CurrentResult {
	forecast := s.Forecast(ctx, location)
	now := s.clock.Now()

	instants := Anchor(forecast.Events, now)
	state := CurrentState(instants, now)
	estimate := EstimateHeight(instants, now, s.cfg.TideRangeLowMeters, s.cfg.TideRangeHighMeters)

	return CurrentResult{
		Location: location,
		State:    state,
		Estimate: estimate,
		AsOf:     now,
		Note:     forecast.Note,
	}
}
