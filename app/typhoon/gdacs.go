package typhoon

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// West Pacific basin bounding box. Events outside it are other basins'
// storms; events with no coordinates at all are kept.
const (
	basinLatMin = 0.0
	basinLatMax = 30.0
	basinLonMin = 100.0
	basinLonMax = 180.0
)

type gdacsResponse struct {
	Features []gdacsFeature `json:"features"`
}

type gdacsFeature struct {
	Geometry *struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		EventName    string `json:"eventname"`
		Name         string `json:"name"`
		AlertLevel   string `json:"alertlevel"`
		FromDate     string `json:"fromdate"`
		Country      string `json:"country"`
		IsCurrent    string `json:"iscurrent"`
		SeverityData struct {
			Severity     float64 `json:"severity"`
			SeverityText string  `json:"severitytext"`
			SeverityUnit string  `json:"severityunit"`
		} `json:"severitydata"`
	} `json:"properties"`
}

// ParseGDACS extracts West Pacific tropical cyclone events from a GDACS
// event-list response. typhoonWindKmh is the sustained wind above which an
// uncategorized event is labeled a typhoon.
func ParseGDACS(body []byte, typhoonWindKmh float64) ([]Cyclone, error) {
	var response gdacsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode GDACS response: %w", err)
	}

	cyclones := make([]Cyclone, 0, len(response.Features))
	for _, feature := range response.Features {
		props := feature.Properties

		var lat, lon *float64
		if feature.Geometry != nil && len(feature.Geometry.Coordinates) >= 2 {
			lonVal := feature.Geometry.Coordinates[0]
			latVal := feature.Geometry.Coordinates[1]
			lat, lon = &latVal, &lonVal

			if latVal < basinLatMin || latVal > basinLatMax || lonVal < basinLonMin || lonVal > basinLonMax {
				continue
			}
		}

		name := props.EventName
		if name == "" {
			name = props.Name
		}
		if name == "" {
			continue
		}

		// GDACS flips iscurrent to "false" once an event is superseded.
		status := "Active"
		if strings.EqualFold(props.IsCurrent, "false") {
			status = "Past"
		}

		cyclone := Cyclone{
			Name:              name,
			InternationalName: name,
			Category:          gdacsCategory(props.SeverityData.Severity, props.SeverityData.SeverityUnit, typhoonWindKmh),
			Status:            status,
			AffectedAreas:     splitCountries(props.Country),
			AlertLevel:        props.AlertLevel,
			Latitude:          lat,
			Longitude:         lon,
			Source:            "GDACS",
		}

		if wind := windKmh(props.SeverityData.Severity, props.SeverityData.SeverityUnit); wind > 0 {
			cyclone.WindSpeedKmh = &wind
		}

		if props.FromDate != "" {
			if reported, err := dateparse.ParseAny(props.FromDate); err == nil {
				cyclone.ReportedAt = reported.UTC().Format(time.RFC3339)
			}
		}

		cyclones = append(cyclones, cyclone)
	}

	return cyclones, nil
}

// splitCountries turns the GDACS comma-separated country field into an
// ordered list of affected areas.
func splitCountries(country string) []string {
	if strings.TrimSpace(country) == "" {
		return nil
	}
	areas := make([]string, 0)
	for _, part := range strings.Split(country, ",") {
		if part = strings.TrimSpace(part); part != "" {
			areas = append(areas, part)
		}
	}
	return areas
}

// windKmh converts GDACS severity to km/h. The event list publishes wind
// severity in km/h; a unit mentioning knots converts.
func windKmh(severity float64, unit string) float64 {
	if severity <= 0 {
		return 0
	}
	if strings.Contains(strings.ToLower(unit), "kt") || strings.Contains(strings.ToLower(unit), "knot") {
		return severity * 1.852
	}
	return severity
}

func gdacsCategory(severity float64, unit string, typhoonWindKmh float64) string {
	wind := windKmh(severity, unit)
	switch {
	case wind >= typhoonWindKmh:
		return "Typhoon"
	case wind >= 63:
		return "Tropical Storm"
	case wind > 0:
		return "Tropical Depression"
	default:
		return "Tropical Cyclone"
	}
}
