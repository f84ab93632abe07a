package strategies

import (
	"context"
	"fmt"
	"time"

	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/fingerprint"
)

// APICall hits the carrier's reverse-engineered JSON endpoint directly, the
// same call the tracking page makes over XHR. Endpoints and field names are
// seed configuration, not a stable contract.
type APICall struct{}

// NewAPICall builds the API-call strategy.
func NewAPICall() *APICall {
	return &APICall{}
}

// ID implements ports.Strategy.
func (s *APICall) ID() domain.StrategyID {
	return domain.StrategyAPI
}

// Timeout implements ports.Strategy.
func (s *APICall) Timeout() time.Duration {
	return timeoutCheap
}

// Fetch implements ports.Strategy.
func (s *APICall) Fetch(ctx context.Context, sess *fingerprint.Session, profile *domain.CarrierProfile, tn domain.TrackingNumber) ([]byte, error) {
	if profile.APIEndpoint == "" || profile.APIField == "" {
		return nil, ErrNotConfigured
	}

	client := sessionClient(sess, s.Timeout(), false)

	req := client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json, text/plain, */*").
		SetHeader("X-Requested-With", "XMLHttpRequest").
		SetBody(map[string]string{profile.APIField: tn.Normalized})

	if profile.TrackingURL != "" {
		req.SetHeader("Referer", trackingPageURL(profile.TrackingURL, tn.Normalized))
	}
	// Reuse any CSRF token an earlier rung discovered on this session.
	for _, name := range []string{"csrf_token", "_csrf", "__RequestVerificationToken"} {
		if token := sess.Token(name); token != "" {
			req.SetHeader("X-CSRF-Token", token)
			break
		}
	}

	resp, err := req.Post(profile.APIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("api call failed: %w", err)
	}

	return payloadOrError(resp)
}
