package ports

import (
	"context"
	"time"

	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/fingerprint"
)

// Strategy is one retrieval approach in the escalation ladder. A strategy
// only fetches; classification and parsing happen upstream.
type Strategy interface {
	// ID identifies the strategy in attempt records and provenance.
	ID() domain.StrategyID
	// Timeout is the per-attempt bound for this strategy's cost tier.
	Timeout() time.Duration
	// Fetch performs the network retrieval using the borrowed session.
	// The session must not be retained past the call.
	Fetch(ctx context.Context, sess *fingerprint.Session, profile *domain.CarrierProfile, tn domain.TrackingNumber) ([]byte, error)
}

// Parser attempts to turn a usable payload into a raw extraction.
type Parser interface {
	// ID identifies the parser in provenance.
	ID() domain.ParserID
	// TryExtract returns the extraction and true on a match, or nil and
	// false when the payload does not fit this parser's shape.
	TryExtract(payload []byte, tn domain.TrackingNumber) (*domain.Extraction, bool)
}

// SessionSource is the ladder's view of the fingerprint manager.
type SessionSource interface {
	Acquire(carrier domain.Carrier) (*fingerprint.Session, error)
	Release(carrier domain.Carrier)
	Rotate(carrier domain.Carrier)
}

// Tracker is the in-process API boundary the HTTP handlers call.
type Tracker interface {
	// Track resolves a single tracking number, optionally forced to a
	// carrier by hint. It always returns a result, never an error: engine
	// failures surface as TrackingResult{Success: false}.
	Track(ctx context.Context, raw string, hint domain.Carrier) *domain.TrackingResult
	// TrackBatch resolves a list of numbers under bounded concurrency.
	TrackBatch(ctx context.Context, raws []string) *domain.BatchJob
}
