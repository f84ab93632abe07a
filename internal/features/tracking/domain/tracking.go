package domain

import (
	"strings"
	"time"
)

// TrackingNumber is an immutable PRO number value. Raw preserves the caller's
// input, Normalized is the form all rule matching and keying runs on.
type TrackingNumber struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
}

// NewTrackingNumber normalizes the raw input: trims whitespace, upper-cases,
// and strips separator characters (hyphens, spaces, dots) so that
// "123-1234567" and "123 1234567" match the same format rules.
func NewTrackingNumber(raw string) TrackingNumber {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '.', '/':
			return -1
		}
		return r
	}, normalized)

	return TrackingNumber{
		Raw:        raw,
		Normalized: normalized,
	}
}

// IsEmpty reports whether the normalized form carries no characters at all.
func (t TrackingNumber) IsEmpty() bool {
	return t.Normalized == ""
}

// Status is the controlled vocabulary every free-text carrier status is
// normalized into.
type Status string

const (
	// StatusDelivered indicates the shipment reached its consignee.
	StatusDelivered Status = "DELIVERED"
	// StatusInTransit indicates the shipment is moving between terminals.
	StatusInTransit Status = "IN_TRANSIT"
	// StatusOutForDelivery indicates the shipment is on the final delivery run.
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	// StatusPickedUp indicates the carrier has taken possession of the freight.
	StatusPickedUp Status = "PICKED_UP"
	// StatusException indicates a delivery problem or service disruption.
	StatusException Status = "EXCEPTION"
	// StatusUnknown is the default when no vocabulary keyword matches.
	StatusUnknown Status = "UNKNOWN"
)

// ParserID identifies which extraction parser produced a result.
type ParserID string

const (
	ParserStructured ParserID = "structured"
	ParserTabular    ParserID = "tabular"
	ParserPattern    ParserID = "pattern"
	ParserAPIField   ParserID = "apifield"
)

// TrackingResult is the canonical output of one tracking request.
// It is immutable once constructed and produced exactly once per request.
type TrackingResult struct {
	// TrackingNumber is the normalized PRO number the result belongs to.
	TrackingNumber string `json:"tracking_number"`
	// Carrier is the carrier the request was routed to.
	Carrier Carrier `json:"carrier"`
	// Status is the normalized shipment status.
	Status Status `json:"status"`
	// Location is the free-text location of the most recent event, if any.
	Location string `json:"location,omitempty"`
	// LastEvent is the description of the most recent tracking event.
	LastEvent string `json:"last_event,omitempty"`
	// LastEventTime is the timestamp of the most recent event, when parseable.
	LastEventTime *time.Time `json:"last_event_time,omitempty"`
	// Success reports whether any strategy yielded trustworthy data.
	Success bool `json:"success"`
	// FailureReason is a human-readable explanation when Success is false.
	FailureReason string `json:"failure_reason,omitempty"`
	// Strategy is the retrieval strategy that produced the payload.
	Strategy StrategyID `json:"strategy,omitempty"`
	// Parser is the extraction parser that produced the fields.
	Parser ParserID `json:"parser,omitempty"`
	// Confidence scores how much the extraction should be trusted (0..1).
	Confidence float64 `json:"confidence"`
	// AttemptedStrategies lists every strategy tried, in order.
	AttemptedStrategies []StrategyID `json:"attempted_strategies,omitempty"`
	// RetrievedAt is when the result was assembled.
	RetrievedAt time.Time `json:"retrieved_at"`
}

// BatchJob aggregates the results of a multi-number tracking run.
// Results are ordered exactly as the input numbers were given.
type BatchJob struct {
	Results   []*TrackingResult `json:"results"`
	Attempted int               `json:"attempted"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	// ByCarrier counts how many numbers routed to each carrier.
	ByCarrier map[Carrier]int `json:"by_carrier,omitempty"`
}
