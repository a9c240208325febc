package config

// SourceConfig describes one upstream source, loaded from a YAML file in the
// sources directory. Files are optional: every source has compiled-in
// defaults, a YAML file overrides endpoint, timeout, TTL or fallback order.
type SourceConfig struct {
	Slug     string         `yaml:"-"` // derived from filename
	Name     string         `yaml:"name"`
	URL      string         `yaml:"url"`
	Settings SourceSettings `yaml:"settings"`
	Fallback []FallbackRef  `yaml:"fallbacks"`
}

type SourceSettings struct {
	Enabled  bool `yaml:"enabled"`
	Timeout  int  `yaml:"timeout"`   // seconds
	CacheTTL int  `yaml:"cache_ttl"` // seconds
}

// FallbackRef names an alternative endpoint tried when the primary fails,
// in file order.
type FallbackRef struct {
	URL  string `yaml:"url"`
	Kind string `yaml:"kind"` // text | html | json
}
