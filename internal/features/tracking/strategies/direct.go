package strategies

import (
	"context"
	"fmt"
	"time"

	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/fingerprint"
)

// Direct is the first rung: a plain GET against the carrier's public
// tracking page, no tricks beyond the session's browser-like identity.
type Direct struct{}

// NewDirect builds the direct-fetch strategy.
func NewDirect() *Direct {
	return &Direct{}
}

// ID implements ports.Strategy.
func (s *Direct) ID() domain.StrategyID {
	return domain.StrategyDirect
}

// Timeout implements ports.Strategy.
func (s *Direct) Timeout() time.Duration {
	return timeoutCheap
}

// Fetch implements ports.Strategy.
func (s *Direct) Fetch(ctx context.Context, sess *fingerprint.Session, profile *domain.CarrierProfile, tn domain.TrackingNumber) ([]byte, error) {
	if profile.TrackingURL == "" {
		return nil, ErrNotConfigured
	}

	client := sessionClient(sess, s.Timeout(), false)
	resp, err := client.R().
		SetContext(ctx).
		Get(trackingPageURL(profile.TrackingURL, tn.Normalized))
	if err != nil {
		return nil, fmt.Errorf("direct fetch failed: %w", err)
	}

	return payloadOrError(resp)
}
