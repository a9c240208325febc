package normalize

import (
	"time"
)

// Category labels a normalized alert by what it communicates. Classification
// is priority-ordered: severity wins over topic (see Classify).
type Category string

const (
	CategoryTraffic         Category = "traffic"
	CategoryWarning         Category = "warning"
	CategoryAdvisory        Category = "advisory"
	CategoryForecast        Category = "forecast"
	CategoryTropicalCyclone Category = "tropical_cyclone"
	CategoryGeneral         Category = "general"
	CategoryInfo            Category = "info"
)

// Alert is the canonical record produced from raw scraped feed content.
// Text is whitespace-collapsed and markdown-stripped; Timestamp always
// resolves (falling back to fetch time). Alerts are immutable once created.
type Alert struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
	Source    string    `json:"source"`
	URL       string    `json:"url,omitempty"`
}

// DedupKey identifies the same alert across poll cycles in the durable log.
func (a Alert) DedupKey() string {
	return a.Text + "|" + a.Timestamp.UTC().Format(time.RFC3339)
}
