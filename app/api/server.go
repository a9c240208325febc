package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/incidentph/hazardfeed/app/metrics"
)

// NewServer creates the HTTP server with all routes configured.
func NewServer(handler *Handler, m *metrics.Metrics, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(metricsMiddleware(m))

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/traffic-alerts", handler.GetTrafficAlerts)
	r.GET("/traffic-alerts/highways", handler.GetHighways)
	r.GET("/traffic-alerts/highways/:id", handler.GetHighwayAlerts)

	r.GET("/weather-updates", handler.GetWeatherUpdates)
	r.GET("/severe-weather", handler.GetSevereWeather)
	r.GET("/tropical-cyclones", handler.GetTropicalCyclones)

	r.GET("/typhoons/active", handler.GetActiveTyphoons)
	r.GET("/typhoons/jtwc", handler.GetJTWCTyphoons)
	r.GET("/typhoons/gdacs", handler.GetGDACSTyphoons)

	r.GET("/earthquakes", handler.GetEarthquakes)
	r.GET("/earthquakes/latest", handler.GetLatestEarthquake)

	r.GET("/volcanoes", handler.GetVolcanoes)
	r.GET("/volcanoes/:name", handler.GetVolcanoByName)

	r.GET("/tides/locations", handler.GetTideLocations)
	r.GET("/tides/forecast/:slug", handler.GetTideForecast)
	r.GET("/tides/forecast/:slug/current", handler.GetTideCurrent)

	r.GET("/incidents", handler.GetIncidents)

	r.GET("/weather/openweather", handler.GetOpenWeather)
	r.GET("/weather/openweather/alerts", handler.GetOpenWeatherAlerts)
	r.GET("/weather/qweather/warnings", handler.GetQWeatherWarnings)
	r.GET("/weather/windy/forecast", handler.GetWindyForecast)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "Hazard Feed PH",
			"version":     handler.version,
			"description": "Aggregated Philippine hazard and environmental data API",
			"endpoints": map[string]string{
				"traffic":        "/traffic-alerts",
				"highways":       "/traffic-alerts/highways",
				"weather":        "/weather-updates",
				"severe_weather": "/severe-weather",
				"cyclone_posts":  "/tropical-cyclones",
				"typhoons":       "/typhoons/active",
				"earthquakes":    "/earthquakes",
				"volcanoes":      "/volcanoes",
				"tides":          "/tides/locations",
				"incidents":      "/incidents?limit=N",
				"openweather":    "/weather/openweather?lat=&lon=",
				"qweather":       "/weather/qweather/warnings?lat=&lon=",
				"windy":          "/weather/windy/forecast?lat=&lon=",
				"health":         "/health",
				"metrics":        "/metrics",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}
