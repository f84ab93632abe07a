package strategies

import (
	"context"
	"fmt"
	"time"

	"ltl-tracker/internal/core/logger"
	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/fingerprint"

	"go.uber.org/zap"
)

// Mirror queries public third-party tracking aggregators that index carrier
// data. From the engine's point of view a mirror is just another endpoint:
// its payload goes through the same classify-then-parse pipeline.
type Mirror struct {
	logger *zap.Logger
}

// NewMirror builds the mirror-lookup strategy.
func NewMirror() *Mirror {
	return &Mirror{logger: logger.Named("strategy.mirror")}
}

// ID implements ports.Strategy.
func (s *Mirror) ID() domain.StrategyID {
	return domain.StrategyMirror
}

// Timeout implements ports.Strategy.
func (s *Mirror) Timeout() time.Duration {
	return timeoutCheap
}

// Fetch implements ports.Strategy. Mirrors are tried in order; the first one
// that answers with a substantial body wins.
func (s *Mirror) Fetch(ctx context.Context, sess *fingerprint.Session, profile *domain.CarrierProfile, tn domain.TrackingNumber) ([]byte, error) {
	if len(profile.MirrorURLs) == 0 {
		return nil, ErrNotConfigured
	}

	client := sessionClient(sess, s.Timeout(), false)

	var lastErr error = ErrEmptyBody
	for _, template := range profile.MirrorURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mirrorURL := trackingPageURL(template, tn.Normalized)
		resp, err := client.R().SetContext(ctx).Get(mirrorURL)
		if err != nil {
			s.logger.Debug("Mirror fetch failed",
				zap.String("mirror", mirrorURL),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		body, err := payloadOrError(resp)
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("all mirrors failed: %w", lastErr)
}
