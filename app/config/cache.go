package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

type Cache struct {
	sourcesDir string
	cache      map[string]*SourceConfig
	mu         sync.RWMutex
}

func NewCache(sourcesDir string) *Cache {
	return &Cache{
		sourcesDir: sourcesDir,
		cache:      make(map[string]*SourceConfig),
	}
}

// Run loads every *.yml file from the sources directory. A missing directory
// is not an error: all sources then run on compiled-in defaults.
func (c *Cache) Run() error {
	if _, err := os.Stat(c.sourcesDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.sourcesDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		slug := strings.TrimSuffix(filepath.Base(file), ".yml")

		config, err := c.LoadConfig(slug)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Source configuration loaded", "source", slug, "enabled", config.Settings.Enabled, "cache_ttl", config.Settings.CacheTTL)
	}

	return nil
}

func (c *Cache) LoadConfig(slug string) (*SourceConfig, error) {
	path := filepath.Join(c.sourcesDir, slug+".yml")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config SourceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.Slug = slug
	setDefaults(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[slug] = &config

	return &config, nil
}

func (c *Cache) GetConfig(slug string) (*SourceConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	config, ok := c.cache[slug]
	return config, ok
}

func (c *Cache) GetConfigs() map[string]*SourceConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()

	configsCopy := make(map[string]*SourceConfig, len(c.cache))
	for k, v := range c.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

// TTL returns the configured cache TTL for a source, or fallback when the
// source has no override.
func (c *Cache) TTL(slug string, fallback time.Duration) time.Duration {
	if config, ok := c.GetConfig(slug); ok && config.Settings.CacheTTL > 0 {
		return time.Duration(config.Settings.CacheTTL) * time.Second
	}
	return fallback
}

// Timeout returns the configured fetch timeout for a source, or fallback.
func (c *Cache) Timeout(slug string, fallback time.Duration) time.Duration {
	if config, ok := c.GetConfig(slug); ok && config.Settings.Timeout > 0 {
		return time.Duration(config.Settings.Timeout) * time.Second
	}
	return fallback
}

// URL returns the configured endpoint for a source, or fallback.
func (c *Cache) URL(slug string, fallback string) string {
	if config, ok := c.GetConfig(slug); ok && config.URL != "" {
		return config.URL
	}
	return fallback
}

func setDefaults(config *SourceConfig) {
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 15
	}
	if config.Settings.CacheTTL == 0 {
		config.Settings.CacheTTL = 600
	}
}

func validate(config *SourceConfig) error {
	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	if config.Settings.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must be non-negative")
	}

	validKinds := map[string]bool{"": true, "text": true, "html": true, "json": true}
	for i, fb := range config.Fallback {
		if fb.URL == "" {
			return fmt.Errorf("fallback at index %d must have a url", i)
		}
		if !validKinds[fb.Kind] {
			return fmt.Errorf("invalid fallback kind at index %d: %s", i, fb.Kind)
		}
	}

	return nil
}
