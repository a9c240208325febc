package seismic

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
	quakeSlug    = "phivolcs-earthquakes"
	volcanoSlug  = "phivolcs-volcanoes"
	sourceName   = "PHIVOLCS"
	quakeTTL     = 5 * time.Minute
	volcanoTTL   = 10 * time.Minute
	fetchTimeout = 25 * time.Second
)

// staticVolcanoes is the fallback catalog of permanently monitored volcanoes,
// served when the bulletin page cannot be reached or parsed.
var staticVolcanoes = []Volcano{
	{Name: "Mayon", AlertLevel: notAvailable, Status: "Monitoring data temporarily unavailable", Location: "Albay", Source: sourceName},
	{Name: "Taal", AlertLevel: notAvailable, Status: "Monitoring data temporarily unavailable", Location: "Batangas", Source: sourceName},
	{Name: "Kanlaon", AlertLevel: notAvailable, Status: "Monitoring data temporarily unavailable", Location: "Negros Island", Source: sourceName},
	{Name: "Bulusan", AlertLevel: notAvailable, Status: "Monitoring data temporarily unavailable", Location: "Sorsogon", Source: sourceName},
	{Name: "Pinatubo", AlertLevel: notAvailable, Status: "Monitoring data temporarily unavailable", Location: "Zambales", Source: sourceName},
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

func (s *Service) ttl(slug string, fallback time.Duration) time.Duration {
	if s.cfg.CacheTTLOverride > 0 {
		return time.Duration(s.cfg.CacheTTLOverride) * time.Second
	}
	return s.sources.TTL(slug, fallback)
}

// Earthquakes returns recent earthquake records, cache-first. A page that
// fetches but parses to zero rows yields a single placeholder record so the
// response shape stays stable for clients.
func (s *Service) Earthquakes(ctx context.Context) EarthquakeResult {
	result, err := cache.Fetch(ctx, s.cache, "seismic:earthquakes", s.ttl(quakeSlug, quakeTTL), s.fillEarthquakes)
	if err != nil {
		slog.Error("Earthquake fetch failed", "error", err)
		return EarthquakeResult{
			Earthquakes: []Earthquake{placeholderEarthquake(s.clock.Now())},
			Count:       1,
			Source:      sourceName,
			Note:        "Earthquake bulletin is temporarily unavailable: " + err.Error(),
		}
	}
	return result
}

func (s *Service) fillEarthquakes(ctx context.Context) (EarthquakeResult, error) {
	pageURL := s.sources.URL(quakeSlug, s.cfg.QuakeBaseURL)
	timeout := s.sources.Timeout(quakeSlug, fetchTimeout)

	adapter := fetch.NewHTTPAdapter(quakeSlug, pageURL, fetch.KindHTML, s.client, timeout, s.cfg.UserAgent, s.clock)
	raw, err := fetch.NewOrchestrator("earthquakes").Fetch(ctx, adapter)
	if err != nil {
		return EarthquakeResult{}, err
	}

	earthquakes, err := ParseEarthquakes(string(raw.Payload))
	if err != nil {
		return EarthquakeResult{}, err
	}

	result := EarthquakeResult{Source: sourceName}
	if len(earthquakes) == 0 {
		result.Earthquakes = []Earthquake{placeholderEarthquake(raw.FetchedAt)}
		result.Note = "No earthquake rows found on the bulletin page"
	} else {
		result.Earthquakes = earthquakes
	}
	result.Count = len(result.Earthquakes)

	slog.Info("Earthquake bulletin refreshed", "count", len(earthquakes))
	return result, nil
}

// Latest returns the most recent earthquake record. The bulletin page lists
// newest first, so this is the first row.
func (s *Service) Latest(ctx context.Context) (Earthquake, string) {
	result := s.Earthquakes(ctx)
	if len(result.Earthquakes) == 0 {
		return placeholderEarthquake(s.clock.Now()), result.Note
	}
	return result.Earthquakes[0], result.Note
}

// Volcanoes returns the monitored volcano list, cache-first. Total failure
// falls back to the static catalog instead of an empty set.
func (s *Service) Volcanoes(ctx context.Context) VolcanoResult {
	result, err := cache.Fetch(ctx, s.cache, "seismic:volcanoes", s.ttl(volcanoSlug, volcanoTTL), s.fillVolcanoes)
	if err != nil {
		slog.Error("Volcano fetch failed, serving static catalog", "error", err)
		return VolcanoResult{
			Volcanoes: staticVolcanoes,
			Count:     len(staticVolcanoes),
			Source:    sourceName,
			Note:      "Volcano bulletin is temporarily unavailable, showing the monitored volcano catalog: " + err.Error(),
		}
	}
	return result
}

func (s *Service) fillVolcanoes(ctx context.Context) (VolcanoResult, error) {
	pageURL := s.sources.URL(volcanoSlug, s.cfg.VolcanoBaseURL)
	timeout := s.sources.Timeout(volcanoSlug, fetchTimeout)

	adapter := fetch.NewHTTPAdapter(volcanoSlug, pageURL, fetch.KindHTML, s.client, timeout, s.cfg.UserAgent, s.clock)
	raw, err := fetch.NewOrchestrator("volcanoes").Fetch(ctx, adapter)
	if err != nil {
		return VolcanoResult{}, err
	}

	volcanoes, err := ParseVolcanoes(string(raw.Payload))
	if err != nil {
		return VolcanoResult{}, err
	}

	result := VolcanoResult{Source: sourceName}
	if len(volcanoes) == 0 {
		result.Volcanoes = staticVolcanoes
		result.Note = "No volcano rows found on the bulletin page, showing the monitored volcano catalog"
	} else {
		result.Volcanoes = volcanoes
	}
	result.Count = len(result.Volcanoes)

	slog.Info("Volcano bulletin refreshed", "count", len(volcanoes))
	return result, nil
}

// VolcanoByName resolves one volcano by case-insensitive substring match.
func (s *Service) VolcanoByName(ctx context.Context, name string) (Volcano, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Volcano{}, false
	}

	for _, volcano := range s.Volcanoes(ctx).Volcanoes {
		if strings.Contains(strings.ToLower(volcano.Name), name) {
			return volcano, true
		}
	}
	return Volcano{}, false
}

func placeholderEarthquake(now time.Time) Earthquake {
	return Earthquake{
		DateTime:  now.Format("02 January 2006 - 03:04 PM"),
		Latitude:  notAvailable,
		Longitude: notAvailable,
		Depth:     notAvailable,
		Magnitude: notAvailable,
		Location:  "Earthquake data temporarily unavailable",
		Source:    sourceName,
	}
}
