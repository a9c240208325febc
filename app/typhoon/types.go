package typhoon

import "time"

// Cyclone is a normalized tropical cyclone record merged from one or more
// upstream trackers. Pointer fields stay nil when a source does not publish
// the value.
type Cyclone struct {
	Name              string   `json:"name"`
	InternationalName string   `json:"international_name,omitempty"`
	Designation       string   `json:"designation,omitempty"`
	Category          string   `json:"category"`
	WarningNumber     string   `json:"warning_number,omitempty"`
	Latitude          *float64 `json:"latitude,omitempty"`
	Longitude         *float64 `json:"longitude,omitempty"`
	WindSpeedKmh      *float64 `json:"wind_speed_kmh,omitempty"`
	Status            string   `json:"status"`
	AffectedAreas     []string `json:"affected_areas,omitempty"`
	AlertLevel        string   `json:"alert_level,omitempty"`
	AdvisoryURL       string   `json:"advisory_url,omitempty"`
	TrackURL          string   `json:"track_url,omitempty"`
	SatelliteURL      string   `json:"satellite_url,omitempty"`
	ReportedAt        string   `json:"reported_at,omitempty"`
	Source            string   `json:"source"`
}

// Result is the merged active cyclone payload, cached as one unit. Sources
// lists the contributors that actually returned data for this merge.
type Result struct {
	Cyclones  []Cyclone `json:"cyclones"`
	Count     int       `json:"count"`
	Sources   []string  `json:"sources"`
	FetchedAt time.Time `json:"fetched_at"`
	Note      string    `json:"note,omitempty"`
}

// SourceResult is the single-tracker payload served by the per-source
// endpoints.
type SourceResult struct {
	Cyclones []Cyclone `json:"cyclones"`
	Count    int       `json:"count"`
	Source   string    `json:"source"`
	Note     string    `json:"note,omitempty"`
}
