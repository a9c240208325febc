package cfg

type Cfg struct {
	// HTTP server
	Port string

	// Storage
	DataDir    string
	SourcesDir string
	RedisAddr  string

	// Upstream endpoints
	ProxyFeedBase   string
	TrafficHandle   string
	WeatherHandle   string
	QuakeBaseURL    string
	VolcanoBaseURL  string
	JTWCFeedURL     string
	RSSProxyBase    string
	GDACSAPIURL     string
	TideBaseURL     string
	ACLEDAPIURL     string
	OpenWeatherURL  string
	QWeatherBaseURL string
	WindyBaseURL    string

	// Credentials
	ACLEDEmail     string
	ACLEDKey       string
	OpenWeatherKey string
	QWeatherKey    string
	WindyKey       string

	// Heuristic defaults, overridable per deployment
	TideRangeLowMeters   float64
	TideRangeHighMeters  float64
	TyphoonWindThreshold float64

	// Cache behaviour
	CacheTTLOverride int // seconds, 0 means per-operation defaults

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
