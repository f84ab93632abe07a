package parsers

import (
	"encoding/json"
	"strings"
	"time"

	"ltl-tracker/internal/features/tracking/classifier"
	"ltl-tracker/internal/features/tracking/domain"
)

const apiFieldConfidence = 0.8

// APIField handles JSON-decodable payloads: it recursively searches decoded
// structures for known field-name aliases and returns the first complete
// match. Carriers rename these fields constantly, so the alias lists are
// deliberately loose.
type APIField struct{}

// NewAPIField builds the API-field parser.
func NewAPIField() *APIField {
	return &APIField{}
}

// ID implements ports.Parser.
func (p *APIField) ID() domain.ParserID {
	return domain.ParserAPIField
}

var apiStatusAliases = []string{
	"status", "trackingStatus", "shipmentStatus", "currentStatus",
	"statusDescription", "packageStatus", "scanStatus",
}

var apiLocationAliases = []string{
	"location", "currentLocation", "destination", "city",
	"lastLocation", "terminal",
}

var apiEventAliases = []string{
	"description", "activity", "event", "statusDetail", "lastEvent",
}

var apiTimeAliases = []string{
	"timestamp", "eventDate", "statusDate", "date", "lastUpdated", "eventTime",
}

// TryExtract implements ports.Parser.
func (p *APIField) TryExtract(payload []byte, tn domain.TrackingNumber) (*domain.Extraction, bool) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return nil, false
	}

	var doc any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, false
	}

	status := searchAliases(doc, apiStatusAliases)
	if status == "" || classifier.LooksLikeCode(status) {
		return nil, false
	}

	location := searchAliases(doc, apiLocationAliases)
	if classifier.LooksLikeCode(location) {
		location = ""
	}
	event := searchAliases(doc, apiEventAliases)
	if event == "" {
		event = status
	}

	var eventTime *time.Time
	if raw := searchAliases(doc, apiTimeAliases); raw != "" {
		for _, layout := range append([]string{time.RFC3339}, dateLayouts...) {
			if ts, err := time.Parse(layout, raw); err == nil {
				eventTime = &ts
				break
			}
		}
	}

	return &domain.Extraction{
		StatusText: status,
		Location:   location,
		Event:      event,
		EventTime:  eventTime,
		Parser:     domain.ParserAPIField,
		Confidence: apiFieldConfidence,
	}, true
}

// searchAliases walks the decoded structure depth-first and returns the
// first non-empty string found under any of the alias keys. Alias order
// outranks depth: an exact "status" at depth three beats "scanStatus" at the
// top level.
func searchAliases(doc any, aliases []string) string {
	for _, alias := range aliases {
		if val := searchKey(doc, alias); val != "" {
			return val
		}
	}
	return ""
}

func searchKey(doc any, key string) string {
	switch v := doc.(type) {
	case map[string]any:
		for k, child := range v {
			if strings.EqualFold(k, key) {
				if s, ok := child.(string); ok && s != "" {
					return s
				}
			}
		}
		for _, child := range v {
			if s := searchKey(child, key); s != "" {
				return s
			}
		}
	case []any:
		for _, child := range v {
			if s := searchKey(child, key); s != "" {
				return s
			}
		}
	}
	return ""
}
