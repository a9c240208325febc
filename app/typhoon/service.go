package typhoon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/incidentph/hazardfeed/app/cache"
	"github.com/incidentph/hazardfeed/app/cfg"
	"github.com/incidentph/hazardfeed/app/config"
	"github.com/incidentph/hazardfeed/app/fetch"
)

const (
	jtwcSlug     = "jtwc"
	gdacsSlug    = "gdacs"
	defaultTTL   = 15 * time.Minute
	fetchTimeout = 20 * time.Second

	// QWeather warnings are queried for the Manila reference point.
	qweatherLocation = "120.98,14.60"
)

type sourceOutcome struct {
	name     string
	cyclones []Cyclone
	err      error
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

func (s *Service) ttl(slug string) time.Duration {
	if s.cfg.CacheTTLOverride > 0 {
		return time.Duration(s.cfg.CacheTTLOverride) * time.Second
	}
	return s.sources.TTL(slug, defaultTTL)
}

// Active returns the merged cyclone picture from every configured tracker,
// cache-first. Trackers run in parallel and a partial set still serves; only
// when every tracker fails does the result degrade to an empty set with a
// note.
func (s *Service) Active(ctx context.Context) Result {
	result, err := cache.Fetch(ctx, s.cache, "typhoon:active", s.ttl("typhoon"), s.fillActive)
	if err != nil {
		slog.Error("All cyclone trackers failed", "error", err)
		return Result{
			Cyclones:  []Cyclone{},
			Count:     0,
			Sources:   []string{},
			FetchedAt: s.clock.Now(),
			Note:      "Cyclone trackers are temporarily unavailable: " + err.Error(),
		}
	}
	return result
}

func (s *Service) fillActive(ctx context.Context) (Result, error) {
	trackers := []struct {
		name string
		run  func(context.Context) ([]Cyclone, error)
	}{
		{"JTWC", s.fetchJTWC},
		{"GDACS", s.fetchGDACS},
	}
	if s.cfg.QWeatherKey != "" {
		trackers = append(trackers, struct {
			name string
			run  func(context.Context) ([]Cyclone, error)
		}{"QWeather", s.fetchQWeather})
	}

	outcomes := make([]sourceOutcome, len(trackers))
	var wg sync.WaitGroup
	for i, tracker := range trackers {
		wg.Add(1)
		go func(i int, name string, run func(context.Context) ([]Cyclone, error)) {
			defer wg.Done()
			cyclones, err := run(ctx)
			outcomes[i] = sourceOutcome{name: name, cyclones: cyclones, err: err}
		}(i, tracker.name, tracker.run)
	}
	wg.Wait()

	groups := make([][]Cyclone, 0, len(outcomes))
	contributors := make([]string, 0, len(outcomes))
	failures := make([]fetch.AdapterFailure, 0)
	for _, outcome := range outcomes {
		if outcome.err != nil {
			slog.Warn("Cyclone tracker failed", "tracker", outcome.name, "error", outcome.err)
			failures = append(failures, fetch.AdapterFailure{Adapter: outcome.name, Reason: outcome.err.Error()})
			continue
		}
		groups = append(groups, outcome.cyclones)
		contributors = append(contributors, outcome.name)
	}

	if len(contributors) == 0 {
		return Result{}, &fetch.UnavailableError{Capability: "active cyclones", Failures: failures}
	}

	merged := Merge(groups...)
	slog.Info("Cyclone picture merged", "sources", contributors, "count", len(merged))

	result := Result{
		Cyclones:  merged,
		Count:     len(merged),
		Sources:   contributors,
		FetchedAt: s.clock.Now(),
	}
	if len(failures) > 0 {
		result.Note = (&fetch.UnavailableError{Capability: "some trackers", Failures: failures}).Error()
	}
	return result, nil
}

// JTWC serves the JTWC tracker on its own, cache-first.
func (s *Service) JTWC(ctx context.Context) SourceResult {
	return s.sourceResult(ctx, "typhoon:jtwc", jtwcSlug, "JTWC", s.fetchJTWC)
}

// GDACS serves the GDACS tracker on its own, cache-first.
func (s *Service) GDACS(ctx context.Context) SourceResult {
	return s.sourceResult(ctx, "typhoon:gdacs", gdacsSlug, "GDACS", s.fetchGDACS)
}

func (s *Service) sourceResult(ctx context.Context, key, slug, name string, run func(context.Context) ([]Cyclone, error)) SourceResult {
	cyclones, err := cache.Fetch(ctx, s.cache, key, s.ttl(slug), run)
	if err != nil {
		slog.Error("Cyclone tracker failed", "tracker", name, "error", err)
		return SourceResult{
			Cyclones: []Cyclone{},
			Count:    0,
			Source:   name,
			Note:     name + " tracker is temporarily unavailable: " + err.Error(),
		}
	}
	return SourceResult{Cyclones: cyclones, Count: len(cyclones), Source: name}
}

// fetchJTWC fetches the JTWC warning feed, preferring the RSS-to-JSON proxy
// when one is configured and falling back to the raw RSS.
func (s *Service) fetchJTWC(ctx context.Context) ([]Cyclone, error) {
	feedURL := s.sources.URL(jtwcSlug, s.cfg.JTWCFeedURL)
	timeout := s.sources.Timeout(jtwcSlug, fetchTimeout)

	adapters := make([]fetch.Adapter, 0, 2)
	if s.cfg.RSSProxyBase != "" {
		proxyURL := fmt.Sprintf("%s?rss_url=%s", s.cfg.RSSProxyBase, url.QueryEscape(feedURL))
		adapters = append(adapters, fetch.NewHTTPAdapter(jtwcSlug+":proxy", proxyURL, fetch.KindJSON, s.client, timeout, s.cfg.UserAgent, s.clock))
	}
	adapters = append(adapters, fetch.NewHTTPAdapter(jtwcSlug+":rss", feedURL, fetch.KindText, s.client, timeout, s.cfg.UserAgent, s.clock))

	raw, err := fetch.NewOrchestrator("JTWC warnings").Fetch(ctx, adapters...)
	if err != nil {
		return nil, err
	}

	if raw.Kind == fetch.KindJSON {
		return ParseJTWCProxy(raw.Payload)
	}
	return ParseJTWCFeed(string(raw.Payload))
}

func (s *Service) fetchGDACS(ctx context.Context) ([]Cyclone, error) {
	apiURL := s.sources.URL(gdacsSlug, s.cfg.GDACSAPIURL)
	timeout := s.sources.Timeout(gdacsSlug, fetchTimeout)

	adapter := fetch.NewHTTPAdapter(gdacsSlug, apiURL, fetch.KindJSON, s.client, timeout, s.cfg.UserAgent, s.clock)
	raw, err := fetch.NewOrchestrator("GDACS events").Fetch(ctx, adapter)
	if err != nil {
		return nil, err
	}

	return ParseGDACS(raw.Payload, s.cfg.TyphoonWindThreshold)
}

func (s *Service) fetchQWeather(ctx context.Context) ([]Cyclone, error) {
	warningURL := fmt.Sprintf("%s/warning/now?location=%s&key=%s", s.cfg.QWeatherBaseURL, qweatherLocation, s.cfg.QWeatherKey)

	adapter := fetch.NewHTTPAdapter("qweather:warnings", warningURL, fetch.KindJSON, s.client, fetchTimeout, s.cfg.UserAgent, s.clock)
	raw, err := fetch.NewOrchestrator("QWeather typhoon warnings").Fetch(ctx, adapter)
	if err != nil {
		return nil, err
	}

	return ParseQWeatherTyphoons(raw.Payload)
}
