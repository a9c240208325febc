package conflict

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/araddon/dateparse"
	"github.com/jonboulle/clockwork"

	"github.com/incidentph/hazardfeed/app/cache"
	"github.com/incidentph/hazardfeed/app/cfg"
	"github.com/incidentph/hazardfeed/app/config"
	"github.com/incidentph/hazardfeed/app/fetch"
)

const (
	sourceSlug     = "acled"
	sourceName     = "ACLED"
	defaultLimit   = 50
	maxLimit       = 200
	liveTTL        = 15 * time.Minute
	placeholderTTL = 5 * time.Minute
	fetchTimeout   = 25 * time.Second
)

// Incident is one conflict event. ACLED publishes numeric fields as strings
// and they are passed through unchanged.
type Incident struct {
	EventDate    string `json:"event_date"`
	EventType    string `json:"event_type"`
	SubEventType string `json:"sub_event_type,omitempty"`
	Actor        string `json:"actor,omitempty"`
	Location     string `json:"location"`
	Region       string `json:"region,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Fatalities   string `json:"fatalities,omitempty"`
	Latitude     string `json:"latitude,omitempty"`
	Longitude    string `json:"longitude,omitempty"`
}

// Result is the assembled incident payload, cached as one unit.
type Result struct {
	Incidents []Incident `json:"incidents"`
	Count     int        `json:"count"`
	Source    string     `json:"source"`
	Note      string     `json:"note,omitempty"`
}

type acledResponse struct {
	Data []struct {
		EventDate    string `json:"event_date"`
		EventType    string `json:"event_type"`
		SubEventType string `json:"sub_event_type"`
		Actor1       string `json:"actor1"`
		Location     string `json:"location"`
		Admin1       string `json:"admin1"`
		Notes        string `json:"notes"`
		Fatalities   string `json:"fatalities"`
		Latitude     string `json:"latitude"`
		Longitude    string `json:"longitude"`
	} `json:"data"`
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

// ClampLimit normalizes a requested incident count to the supported window.
// Zero or negative falls back to the default page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Incidents returns recent Philippine conflict events, cache-first. Without
// registered credentials the endpoint is disabled and a placeholder payload
// is cached briefly instead.
func (s *Service) Incidents(ctx context.Context, limit int) Result {
	limit = ClampLimit(limit)

	if s.cfg.ACLEDEmail == "" || s.cfg.ACLEDKey == "" {
		result, _ := cache.Fetch(ctx, s.cache, "conflict:placeholder", placeholderTTL, func(ctx context.Context) (Result, error) {
			return Result{
				Incidents: []Incident{},
				Count:     0,
				Source:    sourceName,
				Note:      "Incident data requires ACLED credentials; set ACLED_API_EMAIL and ACLED_API_KEY",
			}, nil
		})
		return result
	}

	key := fmt.Sprintf("conflict:incidents:%d", limit)
	result, err := cache.Fetch(ctx, s.cache, key, s.ttl(), func(ctx context.Context) (Result, error) {
		return s.fill(ctx, limit)
	})
	if err != nil {
		slog.Error("Incident fetch failed", "error", err)
		return Result{
			Incidents: []Incident{},
			Count:     0,
			Source:    sourceName,
			Note:      "Incident data is temporarily unavailable: " + err.Error(),
		}
	}
	return result
}

func (s *Service) ttl() time.Duration {
	if s.cfg.CacheTTLOverride > 0 {
		return time.Duration(s.cfg.CacheTTLOverride) * time.Second
	}
	return s.sources.TTL(sourceSlug, liveTTL)
}

func (s *Service) fill(ctx context.Context, limit int) (Result, error) {
	params := url.Values{}
	params.Set("email", s.cfg.ACLEDEmail)
	params.Set("key", s.cfg.ACLEDKey)
	params.Set("country", "Philippines")
	params.Set("limit", fmt.Sprintf("%d", limit))

	apiURL := s.sources.URL(sourceSlug, s.cfg.ACLEDAPIURL) + "?" + params.Encode()
	timeout := s.sources.Timeout(sourceSlug, fetchTimeout)

	adapter := fetch.NewHTTPAdapter(sourceSlug, apiURL, fetch.KindJSON, s.client, timeout, s.cfg.UserAgent, s.clock)
	raw, err := fetch.NewOrchestrator("conflict incidents").Fetch(ctx, adapter)
	if err != nil {
		return Result{}, err
	}

	var response acledResponse
	if err := json.Unmarshal(raw.Payload, &response); err != nil {
		return Result{}, fmt.Errorf("failed to decode ACLED response: %w", err)
	}

	incidents := make([]Incident, 0, len(response.Data))
	for _, event := range response.Data {
		incidents = append(incidents, Incident{
			EventDate:    event.EventDate,
			EventType:    event.EventType,
			SubEventType: event.SubEventType,
			Actor:        event.Actor1,
			Location:     event.Location,
			Region:       event.Admin1,
			Notes:        event.Notes,
			Fatalities:   event.Fatalities,
			Latitude:     event.Latitude,
			Longitude:    event.Longitude,
		})
	}

	sort.SliceStable(incidents, func(i, j int) bool {
		ti, erri := dateparse.ParseAny(incidents[i].EventDate)
		tj, errj := dateparse.ParseAny(incidents[j].EventDate)
		if erri != nil || errj != nil {
			return false
		}
		return ti.After(tj)
	})

	slog.Info("Conflict incidents refreshed", "count", len(incidents))
	return Result{
		Incidents: incidents,
		Count:     len(incidents),
		Source:    sourceName,
	}, nil
}
