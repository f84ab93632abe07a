package strategies

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"ltl-tracker/internal/core/logger"
	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/fingerprint"

	"go.uber.org/zap"
)

// AntiBot fetches through the cloudflare bypass transport and performs
// best-effort challenge-token extraction: when the first response embeds a
// challenge token, it is stored on the session and the page is fetched once
// more with the token attached. Cryptographic challenges and CAPTCHAs are
// out of scope; anything the bypass cannot clear is left for the classifier
// to label.
type AntiBot struct {
	logger *zap.Logger
}

// NewAntiBot builds the anti-bot bypass strategy.
func NewAntiBot() *AntiBot {
	return &AntiBot{logger: logger.Named("strategy.antibot")}
}

// ID implements ports.Strategy.
func (s *AntiBot) ID() domain.StrategyID {
	return domain.StrategyAntiBot
}

// Timeout implements ports.Strategy.
func (s *AntiBot) Timeout() time.Duration {
	return timeoutBypass
}

// challengeTokenRes match the token fields challenge pages embed.
var challengeTokenRes = []*regexp.Regexp{
	regexp.MustCompile(`name="cf_chl_tk"\s+value="([^"]+)"`),
	regexp.MustCompile(`__cf_chl_tk=([^"&\s]+)`),
	regexp.MustCompile(`name="(?:csrf_token|_csrf)"\s+(?:content|value)="([^"]+)"`),
}

// Fetch implements ports.Strategy.
func (s *AntiBot) Fetch(ctx context.Context, sess *fingerprint.Session, profile *domain.CarrierProfile, tn domain.TrackingNumber) ([]byte, error) {
	if profile.TrackingURL == "" {
		return nil, ErrNotConfigured
	}

	client := sessionClient(sess, s.Timeout(), true)
	pageURL := trackingPageURL(profile.TrackingURL, tn.Normalized)

	resp, err := client.R().SetContext(ctx).Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("bypass fetch failed: %w", err)
	}
	body, err := payloadOrError(resp)
	if err != nil {
		return nil, fmt.Errorf("bypass fetch failed: %w", err)
	}

	token := extractChallengeToken(body)
	if token == "" {
		return body, nil
	}

	// Challenge token present: keep it on the session and retry once with
	// the cookies the challenge response set.
	sess.SetToken("cf_chl_tk", token)
	s.logger.Debug("Challenge token extracted, refetching",
		zap.String("carrier", string(profile.Carrier)),
	)

	retry, err := client.R().
		SetContext(ctx).
		SetQueryParam("__cf_chl_tk", token).
		Get(pageURL)
	if err != nil {
		return body, nil
	}
	if retryBody, err := payloadOrError(retry); err == nil {
		return retryBody, nil
	}
	return body, nil
}

func extractChallengeToken(body []byte) string {
	for _, re := range challengeTokenRes {
		if m := re.FindSubmatch(body); len(m) > 1 {
			return string(m[1])
		}
	}
	return ""
}
