package weather

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
	sourceSlug   = "pagasa"
	sourceName   = "PAGASA"
	maxUpdates   = 20
	defaultTTL   = 10 * time.Minute
	fetchTimeout = 20 * time.Second
)

// cycloneKeywords marks posts about tropical systems regardless of how the
// severity classifier categorized them.
var cycloneKeywords = []string{"tropical", "cyclone", "typhoon", "depression", "storm", "bagyo"}

// Result is the assembled weather update payload, cached as one unit.
type Result struct {
	Updates []normalize.Alert `json:"updates"`
	Count   int               `json:"count"`
	Source  string            `json:"source"`
	Note    string            `json:"note,omitempty"`
}

// SevereResult splits severe bulletins into warnings and advisories by the
// stronger keyword present in each update.
type SevereResult struct {
	Warnings   []normalize.Alert `json:"warnings"`
	Advisories []normalize.Alert `json:"advisories"`
	Count      int               `json:"count"`
	Source     string            `json:"source"`
	Note       string            `json:"note,omitempty"`
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

// Updates returns the current weather bulletin set, cache-first. Total
// upstream failure degrades to an empty set with a note and is not cached.
func (s *Service) Updates(ctx context.Context) Result {
	result, err := cache.Fetch(ctx, s.cache, "weather:updates", s.ttl(), s.fill)
	if err != nil {
		slog.Error("Weather update fetch failed on all sources", "error", err)
		return Result{
			Updates: []normalize.Alert{},
			Count:   0,
			Source:  sourceName,
			Note:    "Weather bulletin feed is temporarily unavailable: " + err.Error(),
		}
	}
	return result
}

func (s *Service) fill(ctx context.Context) (Result, error) {
	feedURL := s.sources.URL(sourceSlug, fetch.ProxyFeedURL(s.cfg.ProxyFeedBase, s.cfg.WeatherHandle))
	timeout := s.sources.Timeout(sourceSlug, fetchTimeout)

	// The proxy already serves text. When its output degrades to raw markup
	// the readability pass over the same page is the second chance.
	adapters := []fetch.Adapter{
		fetch.NewHTTPAdapter(sourceSlug+":proxy", feedURL, fetch.KindText, s.client, timeout, s.cfg.UserAgent, s.clock),
		fetch.NewReadabilityAdapter(
			fetch.NewHTTPAdapter(sourceSlug+":page", feedURL, fetch.KindHTML, s.client, timeout, s.cfg.UserAgent, s.clock)),
	}
	if sourceConfig, ok := s.sources.GetConfig(sourceSlug); ok {
		adapters = append(adapters, fetch.FallbackAdapters(sourceConfig.Fallback, sourceSlug, s.client, timeout, s.cfg.UserAgent, s.clock)...)
	}

	raw, err := fetch.NewOrchestrator("weather updates").Fetch(ctx, adapters...)
	if err != nil {
		return Result{}, err
	}

	lines := strings.Split(string(raw.Payload), "\n")
	updates := normalize.FromLines(lines, sourceName, feedURL, maxUpdates, raw.FetchedAt)
	slog.Info("Weather updates refreshed", "source", raw.SourceID, "count", len(updates))

	if len(updates) > 0 {
		if err := s.alertLog.Append(updates); err != nil {
			slog.Warn("Failed to persist weather updates", "error", err)
		}
	}

	result := Result{
		Updates: updates,
		Count:   len(updates),
		Source:  sourceName,
	}
	if len(updates) == 0 {
		result.Note = "No substantive bulletins in the current feed"
	}
	return result, nil
}

// Severe splits the current updates into warnings and advisories. An update
// carrying both words counts as a warning, the stronger term wins.
func (s *Service) Severe(ctx context.Context) SevereResult {
	all := s.Updates(ctx)

	warnings := make([]normalize.Alert, 0)
	advisories := make([]normalize.Alert, 0)
	for _, update := range all.Updates {
		if update.Category != normalize.CategoryWarning {
			continue
		}
		lower := strings.ToLower(update.Text)
		if strings.Contains(lower, "warning") || strings.Contains(lower, "alert") {
			warnings = append(warnings, update)
		} else if strings.Contains(lower, "advisory") {
			advisories = append(advisories, update)
		}
	}

	return SevereResult{
		Warnings:   warnings,
		Advisories: advisories,
		Count:      len(warnings) + len(advisories),
		Source:     sourceName,
		Note:       all.Note,
	}
}

// Cyclones returns the updates mentioning tropical systems. Keyword match on
// the text, not the category, because a cyclone warning classifies by its
// severity.
func (s *Service) Cyclones(ctx context.Context) Result {
	all := s.Updates(ctx)

	matched := make([]normalize.Alert, 0)
	for _, update := range all.Updates {
		lower := strings.ToLower(update.Text)
		for _, keyword := range cycloneKeywords {
			if strings.Contains(lower, keyword) {
				matched = append(matched, update)
				break
			}
		}
	}

	return Result{
		Updates: matched,
		Count:   len(matched),
		Source:  sourceName,
		Note:    all.Note,
	}
}
