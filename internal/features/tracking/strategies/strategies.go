// Package strategies implements the retrieval rungs of the escalation
// ladder. Each strategy fetches raw bytes one way; it never classifies or
// parses. Cheap fetches come first in every default ordering, the headless
// browser last.
package strategies

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ltl-tracker/internal/core/httpclient"
	"ltl-tracker/internal/features/tracking/fingerprint"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrNotConfigured means the carrier profile lacks the endpoint this
	// strategy needs. The ladder advances past it.
	ErrNotConfigured = errors.New("strategy not configured for carrier")
	// ErrEmptyBody means the carrier answered with nothing usable.
	ErrEmptyBody = errors.New("empty response body")
)

// Per-strategy timeouts by cost tier. Plain fetches are cheap; the bypass
// transport and the browser need more headroom.
const (
	timeoutCheap   = 8 * time.Second
	timeoutBypass  = 12 * time.Second
	timeoutBrowser = 15 * time.Second
)

// softBlockMinBytes is the smallest non-2xx body still worth classifying.
// 403/503 pages frequently carry the real content behind an interstitial.
const softBlockMinBytes = 200

// sessionClient builds a resty client carrying the session's cookie jar and
// fingerprint headers, so state set by one strategy is visible to the next.
func sessionClient(sess *fingerprint.Session, timeout time.Duration, bypass bool) *resty.Client {
	return httpclient.New(httpclient.Options{
		Jar:     sess.Jar,
		Headers: sess.Fingerprint.Headers(),
		Timeout: timeout,
		Bypass:  bypass,
	})
}

// payloadOrError applies the shared HTTP status policy: 2xx bodies pass, and
// block-ish statuses (403/429/503) pass too when the body is substantial,
// because the classifier decides what they really are. Everything else is an
// error that advances the ladder.
func payloadOrError(resp *resty.Response) ([]byte, error) {
	body := resp.Body()

	if resp.IsSuccess() {
		if len(body) == 0 {
			return nil, ErrEmptyBody
		}
		return body, nil
	}

	switch resp.StatusCode() {
	case 403, 429, 503:
		if len(body) >= softBlockMinBytes {
			return body, nil
		}
	}

	return nil, fmt.Errorf("unexpected status %d (%d bytes)", resp.StatusCode(), len(body))
}

// trackingPageURL expands the profile's tracking URL template. Profiles
// sourced from config may not carry a %s placeholder; fall back to a query
// param in that case.
func trackingPageURL(template, trackingNumber string) string {
	if strings.Contains(template, "%s") {
		return fmt.Sprintf(template, trackingNumber)
	}
	if strings.HasSuffix(template, "=") {
		return template + trackingNumber
	}
	return fmt.Sprintf("%s?pro=%s", template, trackingNumber)
}
