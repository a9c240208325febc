package typhoon

import (
	"encoding/json"
	"strings"
	"testing"
)

const jtwcRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>JTWC TC Warnings</title>
<item>
  <title>Typhoon 03W (Ewiniar) Warning #12</title>
  <link>https://www.metoc.navy.mil/jtwc/products/wp0326.tcw</link>
  <pubDate>Sat, 14 Mar 2026 12:00:00 GMT</pubDate>
  <description><![CDATA[
    <a href="https://www.metoc.navy.mil/jtwc/products/wp0326web.txt">Warning Text</a>
    <a href="https://www.metoc.navy.mil/jtwc/products/wp0326.gif">Prognostic Reasoning</a>
    <a href="https://www.metoc.navy.mil/jtwc/products/wp0326.jpg">Satellite Imagery</a>
  ]]></description>
</item>
<item>
  <title>Current Northwest Pacific/North Indian Ocean Tropical Systems</title>
  <link>https://www.metoc.navy.mil/jtwc/jtwc.html</link>
</item>
<item>
  <title>Tropical Depression 05W (Maliksi) Warning #3</title>
  <link>https://www.metoc.navy.mil/jtwc/products/wp0526.tcw</link>
</item>
</channel>
</rss>`

func TestParseJTWCFeed(t *testing.T) {
	cyclones, err := ParseJTWCFeed(jtwcRSS)
	if err != nil {
		t.Fatalf("ParseJTWCFeed failed: %v", err)
	}
	if len(cyclones) != 2 {
		t.Fatalf("Expected 2 warnings (overview item skipped), got %d", len(cyclones))
	}

	first := cyclones[0]
	if first.Category != "Typhoon" {
		t.Errorf("Expected category Typhoon, got %s", first.Category)
	}
	if first.InternationalName != "Ewiniar" {
		t.Errorf("Expected name Ewiniar, got %s", first.InternationalName)
	}
	if first.Designation != "03W" {
		t.Errorf("Expected designation 03W, got %s", first.Designation)
	}
	if first.WarningNumber != "12" {
		t.Errorf("Expected warning #12, got %s", first.WarningNumber)
	}
	if first.Source != "JTWC" {
		t.Errorf("Unexpected source: %s", first.Source)
	}

	second := cyclones[1]
	if second.Category != "Tropical Depression" || second.InternationalName != "Maliksi" {
		t.Errorf("Unexpected second warning: %+v", second)
	}
}

func TestParseJTWCFeed_StatusAndAffectedAreas(t *testing.T) {
	cyclones, err := ParseJTWCFeed(jtwcRSS)
	if err != nil {
		t.Fatalf("ParseJTWCFeed failed: %v", err)
	}

	first := cyclones[0]
	if first.Status != "Active" {
		t.Errorf("A storm under warnings is Active, got %q", first.Status)
	}
	if len(first.AffectedAreas) != 1 || first.AffectedAreas[0] != "Typhoon 03W (Ewiniar) Warning #12" {
		t.Errorf("Affected areas should carry the warning title, got %v", first.AffectedAreas)
	}

	// Both fields must survive serialization for API consumers.
	encoded, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(encoded), `"status":"Active"`) {
		t.Errorf("Serialized record is missing status: %s", encoded)
	}
	if !strings.Contains(string(encoded), `"affected_areas"`) {
		t.Errorf("Serialized record is missing affected_areas: %s", encoded)
	}
}

func TestParseJTWCFeed_ProductLinks(t *testing.T) {
	cyclones, err := ParseJTWCFeed(jtwcRSS)
	if err != nil {
		t.Fatalf("ParseJTWCFeed failed: %v", err)
	}

	first := cyclones[0]
	if first.TrackURL != "https://www.metoc.navy.mil/jtwc/products/wp0326.gif" {
		t.Errorf("Unexpected track URL: %s", first.TrackURL)
	}
	if first.SatelliteURL != "https://www.metoc.navy.mil/jtwc/products/wp0326.jpg" {
		t.Errorf("Unexpected satellite URL: %s", first.SatelliteURL)
	}
	if first.AdvisoryURL != "https://www.metoc.navy.mil/jtwc/products/wp0326web.txt" {
		t.Errorf("Unexpected advisory URL: %s", first.AdvisoryURL)
	}
}

func TestParseJTWCProxy(t *testing.T) {
	body := `{
	  "status": "ok",
	  "items": [
	    {"title": "Super Typhoon 22W (Pepito) Warning #25", "link": "https://example.navy.mil/wp2226.tcw", "pubDate": "2026-03-14 12:00:00"},
	    {"title": "Weekly outlook discussion", "link": "https://example.navy.mil/outlook.html"}
	  ]
	}`

	cyclones, err := ParseJTWCProxy([]byte(body))
	if err != nil {
		t.Fatalf("ParseJTWCProxy failed: %v", err)
	}
	if len(cyclones) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(cyclones))
	}
	if cyclones[0].Category != "Super Typhoon" || cyclones[0].InternationalName != "Pepito" {
		t.Errorf("Unexpected cyclone: %+v", cyclones[0])
	}
}

func TestParseJTWCProxy_ErrorStatus(t *testing.T) {
	if _, err := ParseJTWCProxy([]byte(`{"status": "error", "items": []}`)); err == nil {
		t.Error("Expected error for proxy error status")
	}
}
