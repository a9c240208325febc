package api

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/incidentph/hazardfeed/app/conflict"
	"github.com/incidentph/hazardfeed/app/metrics"
	"github.com/incidentph/hazardfeed/app/seismic"
	"github.com/incidentph/hazardfeed/app/tide"
	"github.com/incidentph/hazardfeed/app/traffic"
	"github.com/incidentph/hazardfeed/app/typhoon"
	"github.com/incidentph/hazardfeed/app/weather"
	"github.com/incidentph/hazardfeed/app/weatherx"
)

type TrafficService interface {
	Alerts(ctx context.Context) traffic.Result
	ForHighway(ctx context.Context, highway traffic.Highway) traffic.HighwayResult
}

type WeatherService interface {
	Updates(ctx context.Context) weather.Result
	Severe(ctx context.Context) weather.SevereResult
	Cyclones(ctx context.Context) weather.Result
}

type SeismicService interface {
	Earthquakes(ctx context.Context) seismic.EarthquakeResult
	Latest(ctx context.Context) (seismic.Earthquake, string)
	Volcanoes(ctx context.Context) seismic.VolcanoResult
	VolcanoByName(ctx context.Context, name string) (seismic.Volcano, bool)
}

type TyphoonService interface {
	Active(ctx context.Context) typhoon.Result
	JTWC(ctx context.Context) typhoon.SourceResult
	GDACS(ctx context.Context) typhoon.SourceResult
}

type TideService interface {
	Forecast(ctx context.Context, location tide.Location) tide.Forecast
	Current(ctx context.Context, location tide.Location) tide.CurrentResult
}

type ConflictService interface {
	Incidents(ctx context.Context, limit int) conflict.Result
}

type WeatherxService interface {
	OneCall(ctx context.Context, lat, lon float64) weatherx.OneCallResult
	Alerts(ctx context.Context, lat, lon float64) weatherx.AlertsResult
	Warnings(ctx context.Context, lat, lon float64) weatherx.WarningsResult
	Windy(ctx context.Context, lat, lon float64) weatherx.WindyResult
}

type Handler struct {
	traffic  TrafficService
	weather  WeatherService
	seismic  SeismicService
	typhoon  TyphoonService
	tide     TideService
	conflict ConflictService
	weatherx WeatherxService
	metrics  *metrics.Metrics
	clock    clockwork.Clock
	version  string
}
