package tide

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const metersToFeet = 3.28084

var (
	timeRe   = regexp.MustCompile(`(?i)\b[0-9]{1,2}:[0-9]{2}\s*[AP]M\b`)
	dayRe    = regexp.MustCompile(`\b([0-9]{1,2})\b`)
	heightRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*m`)
	feetRe   = regexp.MustCompile(`\(([0-9]+(?:\.[0-9]+)?)\s*ft\)`)
)

// ParseForecast extracts tide extremes from a tide-forecast location page.
// Each tide-day table lists High/Low rows with a clock time, optional date
// text in the time cell, and a height in meters.
func ParseForecast(html string) ([]Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tide page: %w", err)
	}

	events := make([]Event, 0)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		typeText := strings.ToLower(strings.TrimSpace(cells.Eq(0).Text()))
		var eventType string
		switch {
		case strings.Contains(typeText, "high"):
			eventType = "High Tide"
		case strings.Contains(typeText, "low"):
			eventType = "Low Tide"
		default:
			return
		}

		timeCell := strings.TrimSpace(cells.Eq(1).Text())
		clock := timeRe.FindString(timeCell)
		if clock == "" {
			return
		}

		event := Event{
			Type:         eventType,
			Time:         strings.ToUpper(strings.Join(strings.Fields(clock), " ")),
			CalendarDate: calendarDate(timeCell, clock),
		}

		if cells.Length() >= 3 {
			heightCell := cells.Eq(2).Text()
			if match := heightRe.FindStringSubmatch(heightCell); match != nil {
				event.HeightM, _ = strconv.ParseFloat(match[1], 64)
			}
			if match := feetRe.FindStringSubmatch(heightCell); match != nil {
				event.HeightFt, _ = strconv.ParseFloat(match[1], 64)
			} else if event.HeightM > 0 {
				event.HeightFt = round2(event.HeightM * metersToFeet)
			}
		}

		events = append(events, event)
	})

	return events, nil
}

// calendarDate pulls the date text out of the time cell's parenthetical,
// like "4:13 AM (Sat 14 March)" yielding "Sat 14 March". The clock time is
// stripped first so its digits are not mistaken for a date. The source gives
// no year, so the text is kept as-is for the analyzer to anchor.
func calendarDate(timeCell, clock string) string {
	rest := strings.Replace(timeCell, clock, "", 1)
	open := strings.Index(rest, "(")
	if open < 0 {
		return ""
	}
	close := strings.Index(rest[open:], ")")
	if close < 0 {
		return strings.TrimSpace(rest[open+1:])
	}
	return strings.TrimSpace(rest[open+1 : open+close])
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
