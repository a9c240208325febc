package seismic

// Earthquake is one row of the PHIVOLCS earthquake bulletin table. Fields
// stay as published strings; the upstream table mixes formats and the value
// "N/A" stands in for anything missing.
type Earthquake struct {
	DateTime  string `json:"date_time"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	Depth     string `json:"depth_km"`
	Magnitude string `json:"magnitude"`
	Location  string `json:"location"`
	Source    string `json:"source"`
}

// Volcano is one monitored volcano with its current alert status.
type Volcano struct {
	Name       string `json:"name"`
	AlertLevel string `json:"alert_level"`
	Status     string `json:"status"`
	Location   string `json:"location,omitempty"`
	Source     string `json:"source"`
}

// EarthquakeResult is the assembled earthquake payload, cached as one unit.
type EarthquakeResult struct {
	Earthquakes []Earthquake `json:"earthquakes"`
	Count       int          `json:"count"`
	Source      string       `json:"source"`
	Note        string       `json:"note,omitempty"`
}

// VolcanoResult is the assembled volcano payload, cached as one unit.
type VolcanoResult struct {
	Volcanoes []Volcano `json:"volcanoes"`
	Count     int       `json:"count"`
	Source    string    `json:"source"`
	Note      string    `json:"note,omitempty"`
}
