package strategies

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ltl-tracker/internal/core/logger"
	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/fingerprint"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Form fetches the carrier's search page, discovers the hidden fields the
// real form carries (CSRF tokens, view state), and submits the tracking
// search the way a browser would.
type Form struct {
	logger *zap.Logger
}

// NewForm builds the form-submission strategy.
func NewForm() *Form {
	return &Form{logger: logger.Named("strategy.form")}
}

// ID implements ports.Strategy.
func (s *Form) ID() domain.StrategyID {
	return domain.StrategyForm
}

// Timeout implements ports.Strategy.
func (s *Form) Timeout() time.Duration {
	return timeoutCheap
}

// Fetch implements ports.Strategy.
func (s *Form) Fetch(ctx context.Context, sess *fingerprint.Session, profile *domain.CarrierProfile, tn domain.TrackingNumber) ([]byte, error) {
	if profile.FormURL == "" || profile.FormField == "" {
		return nil, ErrNotConfigured
	}

	client := sessionClient(sess, s.Timeout(), false)

	pageResp, err := client.R().SetContext(ctx).Get(profile.FormURL)
	if err != nil {
		return nil, fmt.Errorf("form page fetch failed: %w", err)
	}
	page, err := payloadOrError(pageResp)
	if err != nil {
		return nil, fmt.Errorf("form page fetch failed: %w", err)
	}

	action, fields, err := s.discoverForm(page, profile.FormField)
	if err != nil {
		return nil, err
	}
	fields.Set(profile.FormField, tn.Normalized)

	// Hidden tokens are session state too: keep them for later rungs.
	for name, values := range fields {
		if len(values) > 0 && looksLikeToken(name) {
			sess.SetToken(name, values[0])
		}
	}

	target, err := resolveAction(profile.FormURL, action)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Submitting discovered form",
		zap.String("carrier", string(profile.Carrier)),
		zap.String("action", target),
		zap.Int("hidden_fields", len(fields)-1),
	)

	resp, err := client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetHeader("Referer", profile.FormURL).
		SetBody(fields.Encode()).
		Post(target)
	if err != nil {
		return nil, fmt.Errorf("form submit failed: %w", err)
	}

	return payloadOrError(resp)
}

// discoverForm finds the form owning the tracking input (or the first form)
// and collects its hidden fields.
func (s *Form) discoverForm(page []byte, field string) (string, url.Values, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", nil, fmt.Errorf("form page parse failed: %w", err)
	}

	form := doc.Find(fmt.Sprintf("form:has(input[name=%q])", field)).First()
	if form.Length() == 0 {
		form = doc.Find("form").First()
	}
	if form.Length() == 0 {
		return "", nil, fmt.Errorf("no form found on search page")
	}

	fields := url.Values{}
	form.Find("input[type=hidden]").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		value, _ := input.Attr("value")
		fields.Set(name, value)
	})

	action, _ := form.Attr("action")
	return action, fields, nil
}

// resolveAction turns a possibly relative form action into an absolute URL.
func resolveAction(pageURL, action string) (string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid form page URL: %w", err)
	}
	if action == "" {
		return base.String(), nil
	}
	ref, err := url.Parse(action)
	if err != nil {
		return "", fmt.Errorf("invalid form action: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

func looksLikeToken(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "token") ||
		strings.Contains(lower, "csrf") ||
		strings.Contains(lower, "viewstate")
}
