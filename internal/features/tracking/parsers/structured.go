package parsers

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"ltl-tracker/internal/features/tracking/classifier"
	"ltl-tracker/internal/features/tracking/domain"
)

const structuredConfidence = 0.95

// Structured looks for machine-readable records embedded in HTML: JSON-LD
// delivery objects and inline JSON state blobs. It is the highest-confidence
// parser because the carrier itself published the fields.
type Structured struct{}

// NewStructured builds the structured-data parser.
func NewStructured() *Structured {
	return &Structured{}
}

// ID implements ports.Parser.
func (p *Structured) ID() domain.ParserID {
	return domain.ParserStructured
}

var jsonLDRe = regexp.MustCompile(`(?s)<script[^>]+type="application/ld\+json"[^>]*>(.*?)</script>`)

// statusFieldAliases are the JSON keys carriers embed shipment status under.
var statusFieldAliases = []string{
	"deliveryStatus", "trackingStatus", "shipmentStatus", "status", "currentStatus",
}

var locationFieldAliases = []string{
	"currentLocation", "deliveryAddress", "location", "destination", "addressLocality",
}

var timeFieldAliases = []string{
	"expectedArrivalUntil", "deliveryDate", "statusDate", "timestamp", "dateModified",
}

// TryExtract implements ports.Parser.
func (p *Structured) TryExtract(payload []byte, tn domain.TrackingNumber) (*domain.Extraction, bool) {
	for _, m := range jsonLDRe.FindAllSubmatch(payload, -1) {
		var doc any
		if err := json.Unmarshal([]byte(strings.TrimSpace(string(m[1]))), &doc); err != nil {
			continue
		}
		if ext := p.fromDocument(doc); ext != nil {
			return ext, true
		}
	}
	return nil, false
}

// fromDocument walks a decoded JSON-LD document for a delivery-shaped object.
func (p *Structured) fromDocument(doc any) *domain.Extraction {
	node := findDeliveryNode(doc)
	if node == nil {
		return nil
	}

	status := firstStringField(node, statusFieldAliases)
	if status == "" {
		return nil
	}
	// Schema.org enumerations come through as URLs; keep the last segment.
	if idx := strings.LastIndex(status, "/"); idx >= 0 {
		status = status[idx+1:]
	}
	if classifier.LooksLikeCode(status) {
		return nil
	}

	location := firstStringField(node, locationFieldAliases)
	if classifier.LooksLikeCode(location) {
		location = ""
	}

	var eventTime *time.Time
	if raw := firstStringField(node, timeFieldAliases); raw != "" {
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
		Event:      status,
		EventTime:  eventTime,
		Parser:     domain.ParserStructured,
		Confidence: structuredConfidence,
	}
}

// findDeliveryNode searches the document for an object that looks like a
// schema.org ParcelDelivery or carries a recognizable status field.
func findDeliveryNode(doc any) map[string]any {
	switch v := doc.(type) {
	case map[string]any:
		if t, ok := v["@type"].(string); ok && strings.Contains(strings.ToLower(t), "delivery") {
			return v
		}
		if firstStringField(v, statusFieldAliases) != "" {
			return v
		}
		for _, child := range v {
			if node := findDeliveryNode(child); node != nil {
				return node
			}
		}
	case []any:
		for _, child := range v {
			if node := findDeliveryNode(child); node != nil {
				return node
			}
		}
	}
	return nil
}

// firstStringField returns the first alias present in the map with a
// non-empty string value, searching nested objects one level deep.
func firstStringField(node map[string]any, aliases []string) string {
	for _, alias := range aliases {
		if raw, ok := node[alias]; ok {
			switch val := raw.(type) {
			case string:
				if val != "" {
					return val
				}
			case map[string]any:
				if name, ok := val["name"].(string); ok && name != "" {
					return name
				}
				if inner := firstStringField(val, aliases); inner != "" {
					return inner
				}
			}
		}
	}
	return ""
}
