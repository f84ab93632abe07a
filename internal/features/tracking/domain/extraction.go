package domain

import "time"

// Extraction is a parser's raw output before normalization: free-text fields
// exactly as they appeared on the carrier page, plus the parser's base
// confidence. The result normalizer turns this into a TrackingResult.
type Extraction struct {
	// StatusText is the free-text shipment status found on the page.
	StatusText string
	// Location is the free-text location, when found.
	Location string
	// Event is the description of the most recent tracking event.
	Event string
	// EventTime is the event timestamp, when a date token was parseable.
	EventTime *time.Time
	// Parser identifies which parser produced the extraction.
	Parser ParserID
	// Confidence is the parser's base confidence for this match.
	Confidence float64
}
