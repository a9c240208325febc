package tide

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ReconstructInstant anchors a scraped clock time to an absolute instant.
// The day-of-month parsed out of the calendar-date text is substituted into
// the current month; a result more than 24 hours in the past means the table
// has rolled into next month, so one month is added. An empty or dayless
// date uses today's date. Reports false when the clock time cannot be
// parsed.
func ReconstructInstant(clock, calendarDate string, now time.Time) (time.Time, bool) {
	parsed, err := time.Parse("3:04 PM", strings.ToUpper(strings.TrimSpace(clock)))
	if err != nil {
		return time.Time{}, false
	}

	day := dayOfMonth(calendarDate)
	if day == 0 {
		day = now.Day()
	}

	instant := time.Date(now.Year(), now.Month(), day, parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
	if now.Sub(instant) > 24*time.Hour {
		instant = instant.AddDate(0, 1, 0)
	}

	return instant, true
}

// Anchor converts scraped events into absolute instants, dropping any whose
// clock time does not parse. Output is sorted ascending.
func Anchor(events []Event, now time.Time) []Instant {
	instants := make([]Instant, 0, len(events))
	for _, event := range events {
		at, ok := ReconstructInstant(event.Time, event.CalendarDate, now)
		if !ok {
			continue
		}
		instants = append(instants, Instant{Type: event.Type, At: at, HeightM: event.HeightM})
	}

	sort.Slice(instants, func(i, j int) bool { return instants[i].At.Before(instants[j].At) })
	return instants
}

// CurrentState derives the tide trend from the next upcoming extreme: water
// rises toward a High and falls toward a Low. With no future event in the
// table the trend is unknown.
func CurrentState(instants []Instant, now time.Time) State {
	var next *Instant
	for i := range instants {
		if instants[i].At.After(now) {
			next = &instants[i]
			break
		}
	}

	if next == nil {
		return State{Trend: "Unknown"}
	}

	trend := "Unknown"
	switch next.Type {
	case "High Tide":
		trend = "Rising"
	case "Low Tide":
		trend = "Falling"
	}

	return State{
		Trend:      trend,
		NextEvent:  next,
		TimeToNext: formatTimeTo(next.At.Sub(now)),
	}
}

// EstimateHeight interpolates the current water level between the bracketing
// pair of extremes, and scales it to a percentage of the assumed tide range.
// Nil when now is not bracketed by two consecutive events.
func EstimateHeight(instants []Instant, now time.Time, rangeLowM, rangeHighM float64) *HeightEstimate {
	for i := 0; i+1 < len(instants); i++ {
		prev, next := instants[i], instants[i+1]
		if prev.At.After(now) || !next.At.After(now) {
			continue
		}

		span := next.At.Sub(prev.At)
		if span <= 0 {
			continue
		}

		fraction := float64(now.Sub(prev.At)) / float64(span)
		height := prev.HeightM + (next.HeightM-prev.HeightM)*fraction

		percent := 0.0
		if rangeHighM > rangeLowM {
			percent = (height - rangeLowM) / (rangeHighM - rangeLowM) * 100
			if percent < 0 {
				percent = 0
			}
			if percent > 100 {
				percent = 100
			}
		}

		return &HeightEstimate{HeightM: round2(height), Percent: round2(percent)}
	}

	return nil
}

// dayOfMonth extracts the day number from date text like "Sat 14 March".
// Zero when the text carries no plausible day.
func dayOfMonth(calendarDate string) int {
	match := dayRe.FindStringSubmatch(calendarDate)
	if match == nil {
		return 0
	}
	day, _ := strconv.Atoi(match[1])
	if day < 1 || day > 31 {
		return 0
	}
	return day
}

func formatTimeTo(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", hours, minutes)
}
