package parsers

import (
	"strings"

	"ltl-tracker/internal/features/tracking/classifier"
	"ltl-tracker/internal/features/tracking/domain"
)

const patternConfidence = 0.5

// patternWindow is how far around a status keyword the parser looks for a
// date and location, in characters of tag-stripped text.
const patternWindow = 160

// Pattern is the broad-net fallback: a keyword scan over tag-stripped text
// looking for a status keyword with a date token nearby, in either order.
type Pattern struct{}

// NewPattern builds the pattern parser.
func NewPattern() *Pattern {
	return &Pattern{}
}

// ID implements ports.Parser.
func (p *Pattern) ID() domain.ParserID {
	return domain.ParserPattern
}

// TryExtract implements ports.Parser.
func (p *Pattern) TryExtract(payload []byte, tn domain.TrackingNumber) (*domain.Extraction, bool) {
	text := stripTags(payload)
	if text == "" {
		return nil, false
	}
	lower := strings.ToLower(text)

	for _, kw := range statusKeywords {
		idx := strings.Index(lower, kw)
		if idx < 0 {
			continue
		}

		start := idx - patternWindow
		if start < 0 {
			start = 0
		}
		end := idx + len(kw) + patternWindow
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]

		eventTime := findDateToken(window)
		if eventTime == nil {
			continue
		}

		status := text[idx : idx+len(kw)]
		location := findLocation(window)
		if classifier.LooksLikeCode(status) || classifier.LooksLikeCode(location) {
			continue
		}

		return &domain.Extraction{
			StatusText: status,
			Location:   location,
			Event:      strings.TrimSpace(window),
			EventTime:  eventTime,
			Parser:     domain.ParserPattern,
			Confidence: patternConfidence,
		}, true
	}

	return nil, false
}
