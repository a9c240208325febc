package typhoon

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// warningTitleRe matches JTWC item titles like
// "Tropical Storm 03W (Ewiniar) Warning #12".
var warningTitleRe = regexp.MustCompile(`(Super Typhoon|Typhoon|Tropical Storm|Tropical Depression)\s+(\d+\w+)\s*\(([^)]+)\)\s*Warning\s*#(\d+)`)

// rssProxyResponse is the shape returned by rss-to-json proxy services.
type rssProxyResponse struct {
	Status string `json:"status"`
	Items  []struct {
		Title       string `json:"title"`
		Link        string `json:"link"`
		PubDate     string `json:"pubDate"`
		Description string `json:"description"`
	} `json:"items"`
}

// ParseJTWCFeed extracts cyclone warnings from the JTWC RSS feed body.
func ParseJTWCFeed(body string) ([]Cyclone, error) {
	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JTWC feed: %w", err)
	}

	cyclones := make([]Cyclone, 0, len(feed.Items))
	for _, item := range feed.Items {
		if cyclone, ok := cycloneFromItem(item.Title, item.Description, item.Link, item.Published); ok {
			cyclones = append(cyclones, cyclone)
		}
	}
	return cyclones, nil
}

// ParseJTWCProxy extracts cyclone warnings from an rss-to-json proxy
// response for the JTWC feed.
func ParseJTWCProxy(body []byte) ([]Cyclone, error) {
	var response rssProxyResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode RSS proxy response: %w", err)
	}
	if response.Status != "" && response.Status != "ok" {
		return nil, fmt.Errorf("RSS proxy returned status %q", response.Status)
	}

	cyclones := make([]Cyclone, 0, len(response.Items))
	for _, item := range response.Items {
		if cyclone, ok := cycloneFromItem(item.Title, item.Description, item.Link, item.PubDate); ok {
			cyclones = append(cyclones, cyclone)
		}
	}
	return cyclones, nil
}

func cycloneFromItem(title, description, link, published string) (Cyclone, bool) {
	match := warningTitleRe.FindStringSubmatch(title)
	if match == nil {
		return Cyclone{}, false
	}

	// A storm in the warning feed is by definition under active warnings.
	cyclone := Cyclone{
		Name:              match[3],
		InternationalName: match[3],
		Designation:       match[2],
		Category:          match[1],
		WarningNumber:     match[4],
		Status:            "Active",
		AffectedAreas:     []string{strings.TrimSpace(title)},
		AdvisoryURL:       link,
		ReportedAt:        published,
		Source:            "JTWC",
	}

	track, satellite, advisory := extractProductLinks(description)
	if track != "" {
		cyclone.TrackURL = track
	}
	if satellite != "" {
		cyclone.SatelliteURL = satellite
	}
	if advisory != "" {
		cyclone.AdvisoryURL = advisory
	}

	return cyclone, true
}

// extractProductLinks pulls the warning-product links out of an item's
// description HTML. JTWC descriptions link the text advisory, the prognostic
// track graphic and a satellite image per storm.
func extractProductLinks(description string) (track, satellite, advisory string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return "", "", ""
	}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		target := strings.ToLower(href + " " + a.Text())

		switch {
		case track == "" && (strings.Contains(target, "track") || strings.Contains(target, "prognostic") || strings.Contains(target, ".gif")):
			track = href
		case satellite == "" && (strings.Contains(target, "sat") || strings.Contains(target, ".jpg")):
			satellite = href
		case advisory == "" && (strings.Contains(target, "warning") || strings.Contains(target, "advisory") || strings.Contains(target, ".txt")):
			advisory = href
		}
	})

	return track, satellite, advisory
}
