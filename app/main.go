package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/incidentph/hazardfeed/app/api"
	"github.com/incidentph/hazardfeed/app/cache"
	"github.com/incidentph/hazardfeed/app/cfg"
	"github.com/incidentph/hazardfeed/app/config"
	"github.com/incidentph/hazardfeed/app/conflict"
	"github.com/incidentph/hazardfeed/app/metrics"
	"github.com/incidentph/hazardfeed/app/seismic"
	"github.com/incidentph/hazardfeed/app/store"
	"github.com/incidentph/hazardfeed/app/tide"
	"github.com/incidentph/hazardfeed/app/traffic"
	"github.com/incidentph/hazardfeed/app/typhoon"
	"github.com/incidentph/hazardfeed/app/weather"
	"github.com/incidentph/hazardfeed/app/weatherx"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully.
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	log.Println("Starting Hazard Feed PH server...")

	// Per-source configuration overrides
	sources := config.NewCache(appCfg.SourcesDir)
	if err := sources.Run(); err != nil {
		log.Fatalf("Failed to load source configurations: %v", err)
	}
	log.Printf("Loaded %d source configurations from %s", len(sources.GetConfigs()), appCfg.SourcesDir)

	// Cache store: Redis when configured, in-memory otherwise
	var cacheStore cache.Store
	if appCfg.RedisAddr != "" {
		log.Printf("Connecting to Redis at %s...", appCfg.RedisAddr)
		redisStore, err := cache.NewRedis(appCfg.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		cacheStore = redisStore
		log.Println("Connected to Redis successfully")
	} else {
		log.Println("No Redis address configured, using in-memory cache")
		cacheStore = cache.NewMemory(nil)
	}
	defer cacheStore.Close()

	// Durable alert logs
	trafficLog, err := store.NewFileLog(appCfg.DataDir, "traffic")
	if err != nil {
		log.Fatalf("Failed to initialize traffic alert log: %v", err)
	}
	weatherLog, err := store.NewFileLog(appCfg.DataDir, "weather")
	if err != nil {
		log.Fatalf("Failed to initialize weather alert log: %v", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	clock := clockwork.NewRealClock()
	m := metrics.New()

	// Domain services
	trafficSvc := traffic.NewService(appCfg, sources, cacheStore, trafficLog, client, clock)
	weatherSvc := weather.NewService(appCfg, sources, cacheStore, weatherLog, client, clock)
	seismicSvc := seismic.NewService(appCfg, sources, cacheStore, client, clock)
	typhoonSvc := typhoon.NewService(appCfg, sources, cacheStore, client, clock)
	tideSvc := tide.NewService(appCfg, sources, cacheStore, client, clock)
	conflictSvc := conflict.NewService(appCfg, sources, cacheStore, client, clock)
	weatherxSvc := weatherx.NewService(appCfg, sources, cacheStore, client, clock)

	log.Println("Initializing HTTP server...")
	handler := api.NewHandler(trafficSvc, weatherSvc, seismicSvc, typhoonSvc, tideSvc,
		conflictSvc, weatherxSvc, m, clock, appCfg.Version)
	server := api.NewServer(handler, m, appCfg.Debug)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("API endpoints available:")
		log.Printf("  Traffic:       http://localhost:%s/traffic-alerts", appCfg.Port)
		log.Printf("  Weather:       http://localhost:%s/weather-updates", appCfg.Port)
		log.Printf("  Typhoons:      http://localhost:%s/typhoons/active", appCfg.Port)
		log.Printf("  Earthquakes:   http://localhost:%s/earthquakes", appCfg.Port)
		log.Printf("  Volcanoes:     http://localhost:%s/volcanoes", appCfg.Port)
		log.Printf("  Tides:         http://localhost:%s/tides/locations", appCfg.Port)
		log.Printf("  Incidents:     http://localhost:%s/incidents", appCfg.Port)
		log.Printf("  Health check:  http://localhost:%s/health", appCfg.Port)
		log.Printf("  Metrics:       http://localhost:%s/metrics", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("Hazard Feed PH server started successfully!")
	log.Println("Press Ctrl+C to shutdown gracefully...")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("Hazard Feed PH server shutdown complete")
}
