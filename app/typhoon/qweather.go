package typhoon

import (
	"encoding/json"
	"fmt"
	"strings"
)

type qweatherWarningResponse struct {
	Code    string `json:"code"`
	Warning []struct {
		Title    string `json:"title"`
		TypeName string `json:"typeName"`
		Text     string `json:"text"`
		PubTime  string `json:"pubTime"`
		Severity string `json:"severity"`
	} `json:"warning"`
}

// ParseQWeatherTyphoons extracts typhoon-related entries from a QWeather
// warning/now response. QWeather covers the region's official warnings, so
// it only ever contributes storms the dedicated trackers may have missed.
func ParseQWeatherTyphoons(body []byte) ([]Cyclone, error) {
	var response qweatherWarningResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode QWeather response: %w", err)
	}
	if response.Code != "" && response.Code != "200" {
		return nil, fmt.Errorf("QWeather returned code %s", response.Code)
	}

	cyclones := make([]Cyclone, 0)
	for _, warning := range response.Warning {
		haystack := strings.ToLower(warning.TypeName + " " + warning.Title)
		if !strings.Contains(haystack, "typhoon") && !strings.Contains(haystack, "tropical") {
			continue
		}

		cyclones = append(cyclones, Cyclone{
			Name:              nameFromWarningTitle(warning.Title),
			InternationalName: nameFromWarningTitle(warning.Title),
			Category:          "Typhoon Warning",
			Status:            "Active",
			AlertLevel:        warning.Severity,
			ReportedAt:        warning.PubTime,
			Source:            "QWeather",
		})
	}

	return cyclones, nil
}

// nameFromWarningTitle pulls a storm name out of a warning title when it is
// parenthesized, like "Typhoon Warning (Doksuri)". Otherwise the full title
// stands in as the name.
func nameFromWarningTitle(title string) string {
	open := strings.Index(title, "(")
	close := strings.Index(title, ")")
	if open >= 0 && close > open+1 {
		return strings.TrimSpace(title[open+1 : close])
	}
	return strings.TrimSpace(title)
}
