package traffic

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
	"github.com/incidentph/hazardfeed/app/normalize"
	"github.com/incidentph/hazardfeed/app/store"
)

const (
	sourceSlug   = "mmda"
	sourceName   = "MMDA"
	maxAlerts    = 30
	defaultTTL   = 10 * time.Minute
	fetchTimeout = 20 * time.Second
)

// Result is the assembled traffic alert payload, cached as one unit.
type Result struct {
	Alerts []normalize.Alert `json:"alerts"`
	Count  int               `json:"count"`
	Source string            `json:"source"`
	Note   string            `json:"note,omitempty"`
}

// HighwayResult scopes traffic alerts to one monitored corridor.
type HighwayResult struct {
	Highway Highway           `json:"highway"`
	Alerts  []normalize.Alert `json:"alerts"`
	Count   int               `json:"count"`
	Note    string            `json:"note,omitempty"`
}

type Service struct {
	cfg      *cfg.Cfg
	sources  *config.Cache
	cache    cache.Store
	alertLog store.AlertLog
	client   *http.Client
	clock    clockwork.Clock
}

func NewService(appCfg *cfg.Cfg, sources *config.Cache, cacheStore cache.Store, alertLog store.AlertLog, client *http.Client, clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		cfg:      appCfg,
		sources:  sources,
		cache:    cacheStore,
		alertLog: alertLog,
		client:   client,
		clock:    clock,
	}
}

func (s *Service) ttl() time.Duration {
	if s.cfg.CacheTTLOverride > 0 {
		return time.Duration(s.cfg.CacheTTLOverride) * time.Second
	}
	return s.sources.TTL(sourceSlug, defaultTTL)
}

// Alerts returns the current traffic alert set, cache-first. When every
// upstream candidate fails the result degrades to an empty set with a note,
// and is not cached so the next request retries immediately.
func (s *Service) Alerts(ctx context.Context) Result {
	result, err := cache.Fetch(ctx, s.cache, "traffic:alerts", s.ttl(), s.fill)
	if err != nil {
		slog.Error("Traffic alert fetch failed on all sources", "error", err)
		return Result{
			Alerts: []normalize.Alert{},
			Count:  0,
			Source: sourceName,
			Note:   "Traffic alert feed is temporarily unavailable: " + err.Error(),
		}
	}
	return result
}

func (s *Service) fill(ctx context.Context) (Result, error) {
	feedURL := s.sources.URL(sourceSlug, fetch.ProxyFeedURL(s.cfg.ProxyFeedBase, s.cfg.TrafficHandle))
	timeout := s.sources.Timeout(sourceSlug, fetchTimeout)

	adapters := []fetch.Adapter{
		fetch.NewHTTPAdapter(sourceSlug+":proxy", feedURL, fetch.KindText, s.client, timeout, s.cfg.UserAgent, s.clock),
	}
	if sourceConfig, ok := s.sources.GetConfig(sourceSlug); ok {
		adapters = append(adapters, fetch.FallbackAdapters(sourceConfig.Fallback, sourceSlug, s.client, timeout, s.cfg.UserAgent, s.clock)...)
	}

	raw, err := fetch.NewOrchestrator("traffic alerts").Fetch(ctx, adapters...)
	if err != nil {
		return Result{}, err
	}

	alerts := s.parse(string(raw.Payload), raw.FetchedAt)
	slog.Info("Traffic alerts refreshed", "source", raw.SourceID, "count", len(alerts))

	if len(alerts) > 0 {
		if err := s.alertLog.Append(alerts); err != nil {
			slog.Warn("Failed to persist traffic alerts", "error", err)
		}
	}

	result := Result{
		Alerts: alerts,
		Count:  len(alerts),
		Source: sourceName,
	}
	if len(alerts) == 0 {
		result.Note = "No active traffic alerts in the current feed"
	}
	return result, nil
}

// parse extracts alert lines from the proxied feed text. Only lines opening
// with the agency's alert prefix are kept; everything else on the page is
// profile chrome or replies.
func (s *Service) parse(text string, fetchedAt time.Time) []normalize.Alert {
	feedURL := fetch.ProxyFeedURL(s.cfg.ProxyFeedBase, s.cfg.TrafficHandle)
	alerts := make([]normalize.Alert, 0, maxAlerts)

	for _, line := range strings.Split(text, "\n") {
		if len(alerts) >= maxAlerts {
			break
		}

		normalized := normalize.NormalizeText(line)
		if !strings.HasPrefix(strings.ToUpper(normalized), "MMDA ALERT") {
			continue
		}
		// The proxy noise floor applies here too: a prefix with no body
		// is a truncated or decorative line, not an alert.
		if len(normalized) < normalize.MinFeedLineLength {
			continue
		}

		alerts = append(alerts, normalize.Alert{
			Text:      normalized,
			Timestamp: normalize.DeriveTimestamp(normalized, fetchedAt),
			Category:  normalize.CategoryTraffic,
			Source:    sourceName,
			URL:       feedURL,
		})
	}

	return alerts
}

// ForHighway filters the current alert set down to one corridor by name
// matching against the corridor's aliases.
func (s *Service) ForHighway(ctx context.Context, highway Highway) HighwayResult {
	all := s.Alerts(ctx)

	matched := make([]normalize.Alert, 0)
	for _, alert := range all.Alerts {
		if mentionsHighway(alert.Text, highway) {
			matched = append(matched, alert)
		}
	}

	return HighwayResult{
		Highway: highway,
		Alerts:  matched,
		Count:   len(matched),
		Note:    all.Note,
	}
}
