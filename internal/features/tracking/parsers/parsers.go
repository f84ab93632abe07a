// Package parsers turns payloads the classifier approved into raw
// extractions. Parsers are tried in a fixed priority order: structured data
// first, broad-net pattern scans last.
package parsers

import (
	"regexp"
	"strings"
	"time"

	"ltl-tracker/internal/features/tracking/ports"
)

// Default returns the parser chain in priority order.
func Default() []ports.Parser {
	return []ports.Parser{
		NewStructured(),
		NewTabular(),
		NewPattern(),
		NewAPIField(),
	}
}

// statusKeywords are the shipment states a row or text fragment must mention
// to qualify as a tracking event. Ordered longest-first so "out for
// delivery" is not swallowed by "delivery".
var statusKeywords = []string{
	"out for delivery",
	"delivered",
	"in transit",
	"picked up",
	"pickup",
	"exception",
	"delayed",
	"at terminal",
	"departed",
	"arrived",
}

// findStatusKeyword returns the first status keyword contained in the text,
// or "".
func findStatusKeyword(text string) string {
	lower := strings.ToLower(text)
	for _, kw := range statusKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

var dateTokenRe = regexp.MustCompile(
	`\d{1,2}/\d{1,2}/\d{2,4}(?:\s+\d{1,2}:\d{2}(?::\d{2})?\s*(?:AM|PM)?)?` +
		`|\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2})?)?` +
		`|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}`,
)

var dateLayouts = []string{
	"01/02/2006 3:04 PM",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
}

// findDateToken scans the text for a date-like token and parses it.
// Returns nil when nothing date-shaped is present.
func findDateToken(text string) *time.Time {
	token := dateTokenRe.FindString(text)
	if token == "" {
		return nil
	}
	cleaned := strings.Join(strings.Fields(token), " ")
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, cleaned); err == nil {
			return &ts
		}
	}
	return nil
}

// cityStateRe matches "Columbus, OH" style location fragments.
var cityStateRe = regexp.MustCompile(`\b[A-Z][A-Za-z .'-]+,\s*[A-Z]{2}\b`)

// findLocation returns a "City, ST" fragment from the text, or "".
func findLocation(text string) string {
	return strings.TrimSpace(cityStateRe.FindString(text))
}

var tagRe = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>|<[^>]*>`)

// stripTags flattens markup into whitespace-normalized text, dropping script
// and style bodies entirely.
func stripTags(payload []byte) string {
	text := tagRe.ReplaceAllString(string(payload), " ")
	return strings.Join(strings.Fields(text), " ")
}
