package weatherx

import (
	"context"
	"encoding/json"
	"fmt"
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
	weatherTTL   = 10 * time.Minute
	windyTTL     = 15 * time.Minute
	fetchTimeout = 15 * time.Second
)

// Alert is one weather alert from the OpenWeather OneCall payload.
type Alert struct {
	SenderName  string   `json:"sender_name"`
	Event       string   `json:"event"`
	Start       int64    `json:"start"`
	End         int64    `json:"end"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// Warning is one QWeather official warning.
type Warning struct {
	Title    string `json:"title"`
	TypeName string `json:"type_name"`
	Severity string `json:"severity"`
	Text     string `json:"text"`
	PubTime  string `json:"pub_time"`
}

// OneCallResult wraps the raw OpenWeather payload with the API version that
// actually served it.
type OneCallResult struct {
	Data       json.RawMessage `json:"data,omitempty"`
	APIVersion string          `json:"api_version,omitempty"`
	Source     string          `json:"source"`
	Note       string          `json:"note,omitempty"`
}

// AlertsResult is the alert subset of the OneCall payload. TyphoonRelated
// carries the alerts whose event text mentions a tropical system.
type AlertsResult struct {
	Alerts         []Alert `json:"alerts"`
	TyphoonRelated []Alert `json:"typhoon_related"`
	Count          int     `json:"count"`
	Source         string  `json:"source"`
	Note           string  `json:"note,omitempty"`
}

// WarningsResult is the QWeather warning payload.
type WarningsResult struct {
	Warnings []Warning `json:"warnings"`
	Count    int       `json:"count"`
	Source   string    `json:"source"`
	Note     string    `json:"note,omitempty"`
}

// WindyResult wraps the raw Windy point-forecast payload.
type WindyResult struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Source string          `json:"source"`
	Note   string          `json:"note,omitempty"`
}

type oneCallPayload struct {
	Alerts []Alert `json:"alerts"`
}

type qweatherPayload struct {
	Code    string `json:"code"`
	Warning []struct {
		Title    string `json:"title"`
		TypeName string `json:"typeName"`
		Severity string `json:"severity"`
		Text     string `json:"text"`
		PubTime  string `json:"pubTime"`
	} `json:"warning"`
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

func (s *Service) ttl(fallback time.Duration) time.Duration {
	if s.cfg.CacheTTLOverride > 0 {
		return time.Duration(s.cfg.CacheTTLOverride) * time.Second
	}
	return fallback
}

// OneCall returns the OpenWeather OneCall payload for a point, cache-first.
// The 3.0 API is tried first and 2.5 serves as the fallback for keys without
// a OneCall 3.0 subscription.
func (s *Service) OneCall(ctx context.Context, lat, lon float64) OneCallResult {
	if s.cfg.OpenWeatherKey == "" {
		return OneCallResult{Source: "OpenWeather", Note: "OpenWeather requires an API key; set OPENWEATHER_API_KEY"}
	}

	key := cache.GeoKey("openweather:onecall", lat, lon)
	result, err := cache.Fetch(ctx, s.cache, key, s.ttl(weatherTTL), func(ctx context.Context) (OneCallResult, error) {
		raw, version, err := s.fetchOneCall(ctx, lat, lon)
		if err != nil {
			return OneCallResult{}, err
		}
		return OneCallResult{Data: raw, APIVersion: version, Source: "OpenWeather"}, nil
	})
	if err != nil {
		slog.Error("OpenWeather fetch failed", "error", err)
		return OneCallResult{Source: "OpenWeather", Note: "OpenWeather is temporarily unavailable: " + err.Error()}
	}
	return result
}

// Alerts returns the alert subset of the OneCall payload, with the
// typhoon-related entries split out for the cyclone consumers.
func (s *Service) Alerts(ctx context.Context, lat, lon float64) AlertsResult {
	oneCall := s.OneCall(ctx, lat, lon)
	if oneCall.Data == nil {
		return AlertsResult{Alerts: []Alert{}, TyphoonRelated: []Alert{}, Source: "OpenWeather", Note: oneCall.Note}
	}

	var payload oneCallPayload
	if err := json.Unmarshal(oneCall.Data, &payload); err != nil {
		slog.Warn("Failed to decode OneCall alerts", "error", err)
		return AlertsResult{Alerts: []Alert{}, TyphoonRelated: []Alert{}, Source: "OpenWeather", Note: "Alert section could not be decoded"}
	}

	alerts := payload.Alerts
	if alerts == nil {
		alerts = []Alert{}
	}

	typhoonRelated := make([]Alert, 0)
	for _, alert := range alerts {
		haystack := strings.ToLower(alert.Event + " " + alert.Description)
		if strings.Contains(haystack, "typhoon") || strings.Contains(haystack, "tropical") || strings.Contains(haystack, "cyclone") {
			typhoonRelated = append(typhoonRelated, alert)
		}
	}

	return AlertsResult{
		Alerts:         alerts,
		TyphoonRelated: typhoonRelated,
		Count:          len(alerts),
		Source:         "OpenWeather",
	}
}

// Warnings returns current official warnings for a point from QWeather.
func (s *Service) Warnings(ctx context.Context, lat, lon float64) WarningsResult {
	if s.cfg.QWeatherKey == "" {
		return WarningsResult{Warnings: []Warning{}, Source: "QWeather", Note: "QWeather requires an API key; set QWEATHER_API_KEY"}
	}

	key := cache.GeoKey("qweather:warnings", lat, lon)
	result, err := cache.Fetch(ctx, s.cache, key, s.ttl(weatherTTL), func(ctx context.Context) (WarningsResult, error) {
		return s.fetchWarnings(ctx, lat, lon)
	})
	if err != nil {
		slog.Error("QWeather fetch failed", "error", err)
		return WarningsResult{Warnings: []Warning{}, Source: "QWeather", Note: "QWeather is temporarily unavailable: " + err.Error()}
	}
	return result
}

// Windy returns the Windy point forecast for a point, cache-first.
func (s *Service) Windy(ctx context.Context, lat, lon float64) WindyResult {
	if s.cfg.WindyKey == "" {
		return WindyResult{Source: "Windy", Note: "Windy requires an API key; set WINDY_API_KEY"}
	}

	key := cache.GeoKey("windy:forecast", lat, lon)
	result, err := cache.Fetch(ctx, s.cache, key, s.ttl(windyTTL), func(ctx context.Context) (WindyResult, error) {
		return s.fetchWindy(ctx, lat, lon)
	})
	if err != nil {
		slog.Error("Windy fetch failed", "error", err)
		return WindyResult{Source: "Windy", Note: "Windy is temporarily unavailable: " + err.Error()}
	}
	return result
}

func (s *Service) fetchOneCall(ctx context.Context, lat, lon float64) (json.RawMessage, string, error) {
	v3 := fmt.Sprintf("%s/3.0/onecall?lat=%.4f&lon=%.4f&appid=%s&units=metric", s.cfg.OpenWeatherURL, lat, lon, s.cfg.OpenWeatherKey)
	v25 := fmt.Sprintf("%s/2.5/onecall?lat=%.4f&lon=%.4f&appid=%s&units=metric", s.cfg.OpenWeatherURL, lat, lon, s.cfg.OpenWeatherKey)

	adapters := []fetch.Adapter{
		fetch.NewHTTPAdapter("openweather:3.0", v3, fetch.KindJSON, s.client, fetchTimeout, s.cfg.UserAgent, s.clock),
		fetch.NewHTTPAdapter("openweather:2.5", v25, fetch.KindJSON, s.client, fetchTimeout, s.cfg.UserAgent, s.clock),
	}

	raw, err := fetch.NewOrchestrator("openweather onecall").Fetch(ctx, adapters...)
	if err != nil {
		return nil, "", err
	}

	version := "3.0"
	if raw.SourceID == "openweather:2.5" {
		version = "2.5"
	}
	return json.RawMessage(raw.Payload), version, nil
}

func (s *Service) fetchWarnings(ctx context.Context, lat, lon float64) (WarningsResult, error) {
	// QWeather expects location as lon,lat.
	warningURL := fmt.Sprintf("%s/warning/now?location=%.2f,%.2f&key=%s", s.cfg.QWeatherBaseURL, lon, lat, s.cfg.QWeatherKey)

	adapter := fetch.NewHTTPAdapter("qweather:warnings", warningURL, fetch.KindJSON, s.client, fetchTimeout, s.cfg.UserAgent, s.clock)
	raw, err := fetch.NewOrchestrator("qweather warnings").Fetch(ctx, adapter)
	if err != nil {
		return WarningsResult{}, err
	}

	var payload qweatherPayload
	if err := json.Unmarshal(raw.Payload, &payload); err != nil {
		return WarningsResult{}, fmt.Errorf("failed to decode QWeather response: %w", err)
	}
	if payload.Code != "" && payload.Code != "200" {
		return WarningsResult{}, fmt.Errorf("QWeather returned code %s", payload.Code)
	}

	warnings := make([]Warning, 0, len(payload.Warning))
	for _, w := range payload.Warning {
		warnings = append(warnings, Warning{
			Title:    w.Title,
			TypeName: w.TypeName,
			Severity: w.Severity,
			Text:     w.Text,
			PubTime:  w.PubTime,
		})
	}

	return WarningsResult{Warnings: warnings, Count: len(warnings), Source: "QWeather"}, nil
}

func (s *Service) fetchWindy(ctx context.Context, lat, lon float64) (WindyResult, error) {
	body, err := json.Marshal(map[string]interface{}{
		"lat":        lat,
		"lon":        lon,
		"model":      "gfs",
		"parameters": []string{"wind", "temp", "pressure", "precip"},
		"key":        s.cfg.WindyKey,
	})
	if err != nil {
		return WindyResult{}, fmt.Errorf("failed to build Windy request: %w", err)
	}

	adapter := fetch.NewJSONPostAdapter("windy:point-forecast", s.cfg.WindyBaseURL+"/point-forecast/v2", body, s.client, fetchTimeout, s.clock)
	raw, err := fetch.NewOrchestrator("windy forecast").Fetch(ctx, adapter)
	if err != nil {
		return WindyResult{}, err
	}

	return WindyResult{Data: json.RawMessage(raw.Payload), Source: "Windy"}, nil
}
