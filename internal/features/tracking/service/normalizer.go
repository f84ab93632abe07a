// Package service houses the escalation engine: the strategy ladder, the
// result normalizer, the batch orchestrator, and the tracking facade the
// HTTP handlers call.
package service

import (
	"fmt"
	"strings"
	"time"

	"ltl-tracker/internal/features/tracking/domain"
)

// rotationDiscount is subtracted from the parser's base confidence for every
// fingerprint rotation past the first needed to reach usable content.
const rotationDiscount = 0.1

// confidenceFloor keeps heavily discounted results from reading as zero.
const confidenceFloor = 0.1

// statusVocabulary maps free-text status keywords to the controlled
// vocabulary. Ordered, first match wins.
var statusVocabulary = []struct {
	keyword string
	status  domain.Status
}{
	{"delivered", domain.StatusDelivered},
	{"out for delivery", domain.StatusOutForDelivery},
	{"in transit", domain.StatusInTransit},
	{"picked up", domain.StatusPickedUp},
	{"pickup", domain.StatusPickedUp},
	{"exception", domain.StatusException},
	{"delayed", domain.StatusException},
}

// NormalizeStatus maps free-text status into the controlled vocabulary by
// case-insensitive substring match. Unmatched text maps to Unknown.
func NormalizeStatus(text string) domain.Status {
	lower := strings.ToLower(text)
	for _, entry := range statusVocabulary {
		if strings.Contains(lower, entry.keyword) {
			return entry.status
		}
	}
	return domain.StatusUnknown
}

// normalize assembles the canonical result from a parser extraction,
// attaching provenance and a confidence optionally discounted by how many
// fingerprint rotations the ladder needed.
func normalize(tn domain.TrackingNumber, carrier domain.Carrier, ext *domain.Extraction, strategy domain.StrategyID, attempts []domain.StrategyAttempt, rotations int) *domain.TrackingResult {
	confidence := ext.Confidence
	if rotations > 1 {
		confidence -= rotationDiscount * float64(rotations-1)
		if confidence < confidenceFloor {
			confidence = confidenceFloor
		}
	}

	return &domain.TrackingResult{
		TrackingNumber:      tn.Normalized,
		Carrier:             carrier,
		Status:              NormalizeStatus(ext.StatusText),
		Location:            ext.Location,
		LastEvent:           ext.Event,
		LastEventTime:       ext.EventTime,
		Success:             true,
		Strategy:            strategy,
		Parser:              ext.Parser,
		Confidence:          confidence,
		AttemptedStrategies: attemptedIDs(attempts),
		RetrievedAt:         time.Now().UTC(),
	}
}

// exhausted builds the terminal failure result. It is the only shape an
// unsuccessful request may take: success=false, status Unknown, and a
// non-empty human-readable reason listing what was tried. A deadline-forced
// exhaustion reads differently from a genuinely exhausted list so the two
// are distinguishable from the result alone.
func exhausted(tn domain.TrackingNumber, carrier domain.Carrier, attempts []domain.StrategyAttempt, sawScript, deadlineHit bool) *domain.TrackingResult {
	ids := attemptedIDs(attempts)

	var reason string
	switch {
	case deadlineHit && len(ids) == 0:
		reason = "request deadline exceeded before any strategy could run"
	case deadlineHit:
		reason = fmt.Sprintf("request deadline exceeded after (%s)", joinIDs(ids))
	case len(ids) == 0:
		reason = "no retrieval strategy is configured for this carrier"
	case sawScript:
		reason = fmt.Sprintf(
			"all strategies exhausted (%s); at least one response was script or markup misclassified as content and rejected",
			joinIDs(ids),
		)
	default:
		reason = fmt.Sprintf("all strategies exhausted (%s)", joinIDs(ids))
	}

	return &domain.TrackingResult{
		TrackingNumber:      tn.Normalized,
		Carrier:             carrier,
		Status:              domain.StatusUnknown,
		Success:             false,
		FailureReason:       reason,
		AttemptedStrategies: ids,
		RetrievedAt:         time.Now().UTC(),
	}
}

// failure builds a pre-ladder failure result (invalid input, cancellation).
func failure(tn domain.TrackingNumber, carrier domain.Carrier, reason string) *domain.TrackingResult {
	return &domain.TrackingResult{
		TrackingNumber: tn.Normalized,
		Carrier:        carrier,
		Status:         domain.StatusUnknown,
		Success:        false,
		FailureReason:  reason,
		RetrievedAt:    time.Now().UTC(),
	}
}

func attemptedIDs(attempts []domain.StrategyAttempt) []domain.StrategyID {
	ids := make([]domain.StrategyID, 0, len(attempts))
	for _, a := range attempts {
		ids = append(ids, a.Strategy)
	}
	return ids
}

func joinIDs(ids []domain.StrategyID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
