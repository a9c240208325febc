package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// MinFeedLineLength is the noise floor for proxy-scraped feed lines: shorter
// lines are navigation fragments, counters or truncated markup.
const MinFeedLineLength = 40

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	timeOfDayRe    = regexp.MustCompile(`(?i)\b([0-9]{1,2}):([0-9]{2})\s*([AP]M)\b`)

	// Structural noise emitted by the text proxy around the actual posts.
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(pinned|follow|following|log in|sign up|home|explore|notifications|messages|more|reply|repost|share)$`),
		regexp.MustCompile(`(?i)^(title|url source|markdown content|warning):`),
		regexp.MustCompile(`(?i)^published(\s+time)?:`),
		regexp.MustCompile(`^[=\-*]{3,}$`),
		regexp.MustCompile(`^!\[`),
	}
)

// NormalizeText produces the canonical form of a scraped line: NFC
// normalization, markdown links reduced to their labels, whitespace runs
// collapsed to single spaces, surrounding space trimmed.
func NormalizeText(text string) string {
	text = norm.NFC.String(text)
	text = markdownLinkRe.ReplaceAllString(text, "$1")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// IsNoise reports whether a line matches the structural-noise denylist.
func IsNoise(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	for _, pattern := range noisePatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}

// Classify maps free text to a category by keyword sets in fixed priority
// order. Severity keywords are tested before topic keywords so an advisory
// about a cyclone classifies by its severity, not its subject.
func Classify(text string) Category {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "warning") ||
		strings.Contains(lower, "advisory") ||
		strings.Contains(lower, "alert"):
		return CategoryWarning
	case strings.Contains(lower, "tropical") ||
		strings.Contains(lower, "cyclone") ||
		strings.Contains(lower, "typhoon") ||
		strings.Contains(lower, "depression") ||
		strings.Contains(lower, "storm"):
		return CategoryTropicalCyclone
	case strings.Contains(lower, "forecast"):
		return CategoryForecast
	default:
		return CategoryGeneral
	}
}

// DeriveTimestamp extracts a spoken time expression ("as of 4:30 PM") from
// text and combines it with now's date. A derived instant in the future
// means the post referred to the previous day (posts read shortly after
// midnight), so the date rolls back by one day. Without a match the fetch
// time stands in. Best-effort, not authoritative.
func DeriveTimestamp(text string, now time.Time) time.Time {
	match := timeOfDayRe.FindStringSubmatch(text)
	if match == nil {
		return now
	}

	hours, err := strconv.Atoi(match[1])
	if err != nil || hours < 1 || hours > 12 {
		return now
	}
	minutes, err := strconv.Atoi(match[2])
	if err != nil || minutes > 59 {
		return now
	}

	meridiem := strings.ToUpper(match[3])
	if meridiem == "PM" && hours < 12 {
		hours += 12
	}
	if meridiem == "AM" && hours == 12 {
		hours = 0
	}

	derived := time.Date(now.Year(), now.Month(), now.Day(), hours, minutes, 0, 0, now.Location())
	if derived.After(now) {
		derived = derived.AddDate(0, 0, -1)
	}

	return derived
}

// FromLines normalizes raw feed lines into canonical alerts: noise and
// sub-threshold lines are discarded, the rest are classified and stamped.
// maxAlerts caps the output when positive.
func FromLines(lines []string, source, url string, maxAlerts int, now time.Time) []Alert {
	alerts := make([]Alert, 0, len(lines))

	for _, line := range lines {
		if maxAlerts > 0 && len(alerts) >= maxAlerts {
			break
		}
		if IsNoise(line) {
			continue
		}

		text := NormalizeText(line)
		if len(text) < MinFeedLineLength {
			continue
		}

		alerts = append(alerts, Alert{
			Text:      text,
			Timestamp: DeriveTimestamp(text, now),
			Category:  Classify(text),
			Source:    source,
			URL:       url,
		})
	}

	return alerts
}
