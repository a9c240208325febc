package tide

import "time"

// Location is a tide forecast station.
type Location struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Event is one predicted tide extreme as scraped, before the analyzer
// anchors it to an absolute instant. Type carries the source's full label
// ("High Tide" or "Low Tide"). CalendarDate is the loosely formatted date
// text next to the clock time, kept verbatim; empty when the table did not
// carry one.
type Event struct {
	Type         string  `json:"type"`
	Time         string  `json:"time"`
	CalendarDate string  `json:"calendar_date,omitempty"`
	HeightM      float64 `json:"height_m"`
	HeightFt     float64 `json:"height_ft"`
}

// Forecast is the scraped tide table for one location, cached as one unit.
type Forecast struct {
	Location Location `json:"location"`
	Events   []Event  `json:"events"`
	Count    int      `json:"count"`
	Source   string   `json:"source"`
	Note     string   `json:"note,omitempty"`
}

// Instant is an event anchored to an absolute time by the analyzer.
type Instant struct {
	Type    string    `json:"type"`
	At      time.Time `json:"at"`
	HeightM float64   `json:"height_m"`
}

// State describes where the water is in the tide cycle right now.
type State struct {
	Trend      string   `json:"trend"`
	NextEvent  *Instant `json:"next_event,omitempty"`
	TimeToNext string   `json:"time_to_next,omitempty"`
}

// HeightEstimate is the interpolated water level between two tide extremes.
type HeightEstimate struct {
	HeightM float64 `json:"height_m"`
	Percent float64 `json:"percent"`
}

// CurrentResult is the analyzer output served by the current-conditions
// endpoint.
type CurrentResult struct {
	Location Location        `json:"location"`
	State    State           `json:"state"`
	Estimate *HeightEstimate `json:"estimate,omitempty"`
	AsOf     time.Time       `json:"as_of"`
	Note     string          `json:"note,omitempty"`
}
