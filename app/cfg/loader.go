package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`

	// Storage
	DataDir    string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory for durable alert logs"`
	SourcesDir string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing per-source configuration files"`
	RedisAddr  string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the cache store (optional, in-memory cache used when unset)"`

	// Upstream endpoints
	ProxyFeedBase   string `long:"proxy-feed-base" env:"PROXY_FEED_BASE" default:"https://r.jina.ai/https://x.com" description:"Text-proxy base URL for social feeds, {handle} substituted when present"`
	TrafficHandle   string `long:"traffic-handle" env:"TRAFFIC_HANDLE" default:"mmda" description:"Social handle for the traffic alert feed"`
	WeatherHandle   string `long:"weather-handle" env:"WEATHER_HANDLE" default:"dost_pagasa" description:"Social handle for the weather bulletin feed"`
	QuakeBaseURL    string `long:"quake-base-url" env:"QUAKE_BASE_URL" default:"https://earthquake.phivolcs.dost.gov.ph" description:"PHIVOLCS earthquake page"`
	VolcanoBaseURL  string `long:"volcano-base-url" env:"VOLCANO_BASE_URL" default:"https://www.phivolcs.dost.gov.ph" description:"PHIVOLCS volcano bulletin page"`
	JTWCFeedURL     string `long:"jtwc-feed-url" env:"JTWC_FEED_URL" default:"https://www.metoc.navy.mil/jtwc/rss/jtwc.rss" description:"JTWC tropical cyclone RSS feed"`
	RSSProxyBase    string `long:"rss-proxy-base" env:"RSS_PROXY_BASE" default:"https://api.rss2json.com/v1/api.json" description:"RSS-to-JSON proxy endpoint (empty disables the proxy hop)"`
	GDACSAPIURL     string `long:"gdacs-api-url" env:"GDACS_API_URL" default:"https://www.gdacs.org/gdacsapi/api/events/geteventlist/TC" description:"GDACS tropical cyclone event list"`
	TideBaseURL     string `long:"tide-base-url" env:"TIDE_BASE_URL" default:"https://www.tide-forecast.com/locations" description:"Tide forecast location pages"`
	ACLEDAPIURL     string `long:"acled-api-url" env:"ACLED_API_BASE_URL" default:"https://api.acleddata.com/acled/read" description:"ACLED incident API"`
	OpenWeatherURL  string `long:"openweather-url" env:"OPENWEATHER_BASE_URL" default:"https://api.openweathermap.org/data" description:"OpenWeather API base"`
	QWeatherBaseURL string `long:"qweather-url" env:"QWEATHER_BASE_URL" default:"https://devapi.qweather.com/v7" description:"QWeather API base"`
	WindyBaseURL    string `long:"windy-url" env:"WINDY_BASE_URL" default:"https://api.windy.com/api" description:"Windy API base"`

	// Credentials
	ACLEDEmail     string `long:"acled-email" env:"ACLED_API_EMAIL" description:"ACLED registered email (incidents disabled when unset)"`
	ACLEDKey       string `long:"acled-key" env:"ACLED_API_KEY" description:"ACLED API key (incidents disabled when unset)"`
	OpenWeatherKey string `long:"openweather-key" env:"OPENWEATHER_API_KEY" description:"OpenWeather API key"`
	QWeatherKey    string `long:"qweather-key" env:"QWEATHER_API_KEY" description:"QWeather API key"`
	WindyKey       string `long:"windy-key" env:"WINDY_API_KEY" description:"Windy point-forecast API key"`

	// Heuristic defaults
	TideRangeLow  float64 `long:"tide-range-low" env:"TIDE_RANGE_LOW_M" default:"0.3" description:"Assumed low-tide height in meters for percentage scaling"`
	TideRangeHigh float64 `long:"tide-range-high" env:"TIDE_RANGE_HIGH_M" default:"2.0" description:"Assumed high-tide height in meters for percentage scaling"`
	TyphoonWind   float64 `long:"typhoon-wind-threshold" env:"TYPHOON_WIND_KMH" default:"118" description:"Sustained wind speed in km/h above which a cyclone is labeled a typhoon"`

	// Cache behaviour
	CacheTTLOverride int `long:"cache-ttl" env:"CACHE_TTL" description:"Override all cache TTLs in seconds (0 keeps per-operation defaults)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36" description:"User agent string for upstream requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Manila" description:"Timezone for derived timestamps"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Port:                 raw.Port,
		DataDir:              raw.DataDir,
		SourcesDir:           raw.SourcesDir,
		RedisAddr:            raw.RedisAddr,
		ProxyFeedBase:        raw.ProxyFeedBase,
		TrafficHandle:        raw.TrafficHandle,
		WeatherHandle:        raw.WeatherHandle,
		QuakeBaseURL:         raw.QuakeBaseURL,
		VolcanoBaseURL:       raw.VolcanoBaseURL,
		JTWCFeedURL:          raw.JTWCFeedURL,
		RSSProxyBase:         raw.RSSProxyBase,
		GDACSAPIURL:          raw.GDACSAPIURL,
		TideBaseURL:          raw.TideBaseURL,
		ACLEDAPIURL:          raw.ACLEDAPIURL,
		OpenWeatherURL:       raw.OpenWeatherURL,
		QWeatherBaseURL:      raw.QWeatherBaseURL,
		WindyBaseURL:         raw.WindyBaseURL,
		ACLEDEmail:           raw.ACLEDEmail,
		ACLEDKey:             raw.ACLEDKey,
		OpenWeatherKey:       raw.OpenWeatherKey,
		QWeatherKey:          raw.QWeatherKey,
		WindyKey:             raw.WindyKey,
		TideRangeLowMeters:   raw.TideRangeLow,
		TideRangeHighMeters:  raw.TideRangeHigh,
		TyphoonWindThreshold: raw.TyphoonWind,
		CacheTTLOverride:     raw.CacheTTLOverride,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// SetForTest installs a configuration without going through flag parsing.
func SetForTest(c *Cfg) {
	globalCfg = c
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
