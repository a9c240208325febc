package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/incidentph/hazardfeed/app/metrics"
	"github.com/incidentph/hazardfeed/app/tide"
	"github.com/incidentph/hazardfeed/app/traffic"
)

// Manila reference point, used when a geo endpoint is called without
// coordinates.
const (
	defaultLat = 14.5995
	defaultLon = 120.9842
)

func NewHandler(trafficSvc TrafficService, weatherSvc WeatherService, seismicSvc SeismicService,
	typhoonSvc TyphoonService, tideSvc TideService, conflictSvc ConflictService,
	weatherxSvc WeatherxService, m *metrics.Metrics, clock clockwork.Clock, version string) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{
		traffic:  trafficSvc,
		weather:  weatherSvc,
		seismic:  seismicSvc,
		typhoon:  typhoonSvc,
		tide:     tideSvc,
		conflict: conflictSvc,
		weatherx: weatherxSvc,
		metrics:  m,
		clock:    clock,
		version:  version,
	}
}

// respond wraps a payload in the standard envelope. Every data endpoint
// answers 200; upstream trouble shows up as a note inside the data, not as
// a server error.
func (h *Handler) respond(c *gin.Context, payload gin.H) {
	payload["success"] = true
	payload["timestamp"] = h.clock.Now().UTC().Format(time.RFC3339)
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": h.clock.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) GetTrafficAlerts(c *gin.Context) {
	result := h.traffic.Alerts(c.Request.Context())
	h.metrics.RecordDegraded("traffic", result.Note)

	payload := gin.H{"alerts": result.Alerts, "count": result.Count, "source": result.Source}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetHighways(c *gin.Context) {
	highways := traffic.Highways()
	h.respond(c, gin.H{"highways": highways, "count": len(highways)})
}

func (h *Handler) GetHighwayAlerts(c *gin.Context) {
	highway, ok := traffic.FindHighway(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Unknown highway", "id": c.Param("id")})
		return
	}

	result := h.traffic.ForHighway(c.Request.Context(), highway)
	payload := gin.H{"highway": result.Highway, "alerts": result.Alerts, "count": result.Count}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetWeatherUpdates(c *gin.Context) {
	result := h.weather.Updates(c.Request.Context())
	h.metrics.RecordDegraded("weather", result.Note)

	payload := gin.H{"updates": result.Updates, "count": result.Count, "source": result.Source}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetSevereWeather(c *gin.Context) {
	result := h.weather.Severe(c.Request.Context())
	h.metrics.RecordDegraded("weather", result.Note)

	payload := gin.H{
		"warnings":   result.Warnings,
		"advisories": result.Advisories,
		"count":      result.Count,
		"source":     result.Source,
	}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetTropicalCyclones(c *gin.Context) {
	result := h.weather.Cyclones(c.Request.Context())
	payload := gin.H{"updates": result.Updates, "count": result.Count, "source": result.Source}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetActiveTyphoons(c *gin.Context) {
	result := h.typhoon.Active(c.Request.Context())
	h.metrics.RecordDegraded("typhoon", result.Note)

	payload := gin.H{"typhoons": result.Cyclones, "count": result.Count, "sources": result.Sources}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetJTWCTyphoons(c *gin.Context) {
	result := h.typhoon.JTWC(c.Request.Context())
	h.sourceTyphoonResponse(c, result.Cyclones, result.Count, result.Source, result.Note)
}

func (h *Handler) GetGDACSTyphoons(c *gin.Context) {
	result := h.typhoon.GDACS(c.Request.Context())
	h.sourceTyphoonResponse(c, result.Cyclones, result.Count, result.Source, result.Note)
}

func (h *Handler) sourceTyphoonResponse(c *gin.Context, cyclones interface{}, count int, source, note string) {
	h.metrics.RecordDegraded("typhoon", note)
	payload := gin.H{"typhoons": cyclones, "count": count, "source": source}
	if note != "" {
		payload["note"] = note
	}
	h.respond(c, payload)
}

func (h *Handler) GetEarthquakes(c *gin.Context) {
	result := h.seismic.Earthquakes(c.Request.Context())
	h.metrics.RecordDegraded("seismic", result.Note)

	payload := gin.H{"earthquakes": result.Earthquakes, "count": result.Count, "source": result.Source}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetLatestEarthquake(c *gin.Context) {
	latest, note := h.seismic.Latest(c.Request.Context())
	payload := gin.H{"earthquake": latest, "source": latest.Source}
	if note != "" {
		payload["note"] = note
	}
	h.respond(c, payload)
}

func (h *Handler) GetVolcanoes(c *gin.Context) {
	result := h.seismic.Volcanoes(c.Request.Context())
	h.metrics.RecordDegraded("seismic", result.Note)

	payload := gin.H{"volcanoes": result.Volcanoes, "count": result.Count, "source": result.Source}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetVolcanoByName(c *gin.Context) {
	name := c.Param("name")
	volcano, found := h.seismic.VolcanoByName(c.Request.Context(), name)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Volcano not found", "name": name})
		return
	}
	h.respond(c, gin.H{"volcano": volcano, "source": volcano.Source})
}

func (h *Handler) GetTideLocations(c *gin.Context) {
	locations := tide.Locations()
	h.respond(c, gin.H{"locations": locations, "count": len(locations)})
}

func (h *Handler) GetTideForecast(c *gin.Context) {
	location, ok := tide.FindLocation(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Unknown tide location", "slug": c.Param("slug")})
		return
	}

	result := h.tide.Forecast(c.Request.Context(), location)
	h.metrics.RecordDegraded("tide", result.Note)

	payload := gin.H{"location": result.Location, "events": result.Events, "count": result.Count, "source": result.Source}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetTideCurrent(c *gin.Context) {
	location, ok := tide.FindLocation(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Unknown tide location", "slug": c.Param("slug")})
		return
	}

	result := h.tide.Current(c.Request.Context(), location)
	payload := gin.H{
		"location": result.Location,
		"state":    result.State,
		"as_of":    result.AsOf.UTC().Format(time.RFC3339),
	}
	if result.Estimate != nil {
		payload["estimate"] = result.Estimate
	}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetIncidents(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	result := h.conflict.Incidents(c.Request.Context(), limit)
	h.metrics.RecordDegraded("conflict", result.Note)

	payload := gin.H{"incidents": result.Incidents, "count": result.Count, "source": result.Source}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetOpenWeather(c *gin.Context) {
	lat, lon, ok := h.coords(c)
	if !ok {
		return
	}

	result := h.weatherx.OneCall(c.Request.Context(), lat, lon)
	h.metrics.RecordDegraded("weatherx", result.Note)

	payload := gin.H{"source": result.Source}
	if result.Data != nil {
		payload["data"] = result.Data
		payload["api_version"] = result.APIVersion
	}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetOpenWeatherAlerts(c *gin.Context) {
	lat, lon, ok := h.coords(c)
	if !ok {
		return
	}

	result := h.weatherx.Alerts(c.Request.Context(), lat, lon)
	payload := gin.H{
		"alerts":          result.Alerts,
		"typhoon_related": result.TyphoonRelated,
		"count":           result.Count,
		"source":          result.Source,
	}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetQWeatherWarnings(c *gin.Context) {
	lat, lon, ok := h.coords(c)
	if !ok {
		return
	}

	result := h.weatherx.Warnings(c.Request.Context(), lat, lon)
	h.metrics.RecordDegraded("weatherx", result.Note)

	payload := gin.H{"warnings": result.Warnings, "count": result.Count, "source": result.Source}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

func (h *Handler) GetWindyForecast(c *gin.Context) {
	lat, lon, ok := h.coords(c)
	if !ok {
		return
	}

	result := h.weatherx.Windy(c.Request.Context(), lat, lon)
	h.metrics.RecordDegraded("weatherx", result.Note)

	payload := gin.H{"source": result.Source}
	if result.Data != nil {
		payload["data"] = result.Data
	}
	if result.Note != "" {
		payload["note"] = result.Note
	}
	h.respond(c, payload)
}

// coords reads lat/lon query parameters, defaulting to Manila. Malformed
// values are a client error.
func (h *Handler) coords(c *gin.Context) (float64, float64, bool) {
	lat, lon := defaultLat, defaultLon

	if raw := c.Query("lat"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "lat must be a number"})
			return 0, 0, false
		}
		lat = parsed
	}
	if raw := c.Query("lon"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "lon must be a number"})
			return 0, 0, false
		}
		lon = parsed
	}

	return lat, lon, true
}
