package tide

import "testing"

const tidePage = `<html><body>
<table class="tide-day-tides">
<tr><th>Tide</th><th>Time</th><th>Height</th></tr>
<tr><td>High Tide</td><td>4:13 AM (Sat 14 March)</td><td>1.45 m (4.76 ft)</td></tr>
<tr><td>Low Tide</td><td>10:41 AM (Sat 14 March)</td><td>0.38 m (1.25 ft)</td></tr>
<tr><td>High Tide</td><td>5:02 PM (Sat 14 March)</td><td>1.52 m (4.99 ft)</td></tr>
<tr><td>Sunrise</td><td>5:48 AM</td><td></td></tr>
</table>
<table class="tide-day-tides">
<tr><td>Low Tide</td><td>11:20 PM (Sat 14 March)</td><td>0.41 m</td></tr>
</table>
</body></html>`

func TestParseForecast(t *testing.T) {
	events, err := ParseForecast(tidePage)
	if err != nil {
		t.Fatalf("ParseForecast failed: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("Expected 4 tide events (sunrise row skipped), got %d", len(events))
	}

	first := events[0]
	if first.Type != "High Tide" {
		t.Errorf("Expected High Tide, got %s", first.Type)
	}
	if first.Time != "4:13 AM" {
		t.Errorf("Expected 4:13 AM, got %q", first.Time)
	}
	if first.CalendarDate != "Sat 14 March" {
		t.Errorf("Expected the source date text kept, got %q", first.CalendarDate)
	}
	if first.HeightM != 1.45 {
		t.Errorf("Expected 1.45 m, got %v", first.HeightM)
	}
	if first.HeightFt != 4.76 {
		t.Errorf("Expected 4.76 ft from the page, got %v", first.HeightFt)
	}
}

func TestParseForecast_FeetDerivedWhenMissing(t *testing.T) {
	events, err := ParseForecast(tidePage)
	if err != nil {
		t.Fatalf("ParseForecast failed: %v", err)
	}

	last := events[len(events)-1]
	if last.HeightM != 0.41 {
		t.Fatalf("Expected 0.41 m, got %v", last.HeightM)
	}
	// 0.41 m is 1.35 ft.
	if last.HeightFt < 1.34 || last.HeightFt > 1.36 {
		t.Errorf("Feet should be derived from meters, got %v", last.HeightFt)
	}
}

func TestParseForecast_NoCalendarDate(t *testing.T) {
	page := `<table><tr><td>High Tide</td><td>4:13 AM</td><td>1.45 m</td></tr></table>`

	events, err := ParseForecast(page)
	if err != nil {
		t.Fatalf("ParseForecast failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].CalendarDate != "" {
		t.Errorf("Missing parenthetical should leave the date empty, got %q", events[0].CalendarDate)
	}
}

func TestParseForecast_EventTypeLabels(t *testing.T) {
	events, err := ParseForecast(tidePage)
	if err != nil {
		t.Fatalf("ParseForecast failed: %v", err)
	}

	for _, event := range events {
		if event.Type != "High Tide" && event.Type != "Low Tide" {
			t.Errorf("Event type should carry the full source label, got %q", event.Type)
		}
	}
}

func TestParseForecast_EmptyPage(t *testing.T) {
	events, err := ParseForecast("<html><body><p>no tables</p></body></html>")
	if err != nil {
		t.Fatalf("ParseForecast failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("Expected no events, got %d", len(events))
	}
}
