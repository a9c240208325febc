package seismic

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const notAvailable = "N/A"

// ParseEarthquakes extracts bulletin rows from the PHIVOLCS earthquake page.
// Column order is positional; rows missing trailing cells get "N/A" values.
// Rows whose first cell holds no digits are layout furniture, not records.
func ParseEarthquakes(html string) ([]Earthquake, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse earthquake page: %w", err)
	}

	earthquakes := make([]Earthquake, 0)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		dateTime := cellText(cells, 0)
		if !containsDigit(dateTime) {
			return
		}

		earthquakes = append(earthquakes, Earthquake{
			DateTime:  dateTime,
			Latitude:  cellText(cells, 1),
			Longitude: cellText(cells, 2),
			Depth:     cellText(cells, 3),
			Magnitude: cellText(cells, 4),
			Location:  cellText(cells, 5),
			Source:    sourceName,
		})
	})

	return earthquakes, nil
}

// ParseVolcanoes extracts volcano bulletin rows. The page lists one volcano
// per row with its alert level and a status remark.
func ParseVolcanoes(html string) ([]Volcano, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse volcano page: %w", err)
	}

	volcanoes := make([]Volcano, 0)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		name := cellText(cells, 0)
		if name == notAvailable || strings.EqualFold(name, "volcano") {
			return
		}

		volcanoes = append(volcanoes, Volcano{
			Name:       name,
			AlertLevel: cellText(cells, 1),
			Status:     cellText(cells, 2),
			Source:     sourceName,
		})
	})

	return volcanoes, nil
}

func cellText(cells *goquery.Selection, index int) string {
	if index >= cells.Length() {
		return notAvailable
	}
	text := strings.TrimSpace(cells.Eq(index).Text())
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return notAvailable
	}
	return text
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
