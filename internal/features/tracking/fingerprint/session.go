package fingerprint

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"ltl-tracker/internal/features/tracking/domain"
)

// Fingerprint is one consistent browser identity: the user agent, the header
// set derived from it, and the simulated TLS profile identifier. Read-only
// after creation, so it is safe to share across goroutines.
type Fingerprint struct {
	ID             string
	UserAgent      string
	Platform       string
	Mobile         bool
	Engine         string
	TLSProfile     string
	AcceptLanguage string
}

// Headers assembles the browser-like header set this identity presents.
func (f Fingerprint) Headers() map[string]string {
	mobile := "?0"
	if f.Mobile {
		mobile = "?1"
	}
	return map[string]string{
		"User-Agent":      f.UserAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": f.AcceptLanguage,
		"Accept-Encoding": "gzip, deflate, br",
		"Sec-Ch-Ua-Platform": fmt.Sprintf("%q", f.Platform),
		"Sec-Ch-Ua-Mobile":   mobile,
		"Sec-Fetch-Dest":     "document",
		"Sec-Fetch-Mode":     "navigate",
		"Sec-Fetch-Site":     "none",
		"Upgrade-Insecure-Requests": "1",
	}
}

// Session is a short-lived browsing identity for one carrier: a cookie jar
// plus a fingerprint. State a strategy establishes (cookies, CSRF tokens) is
// visible to later strategies in the same request through the shared jar and
// the token store. Sessions are never shared across carriers.
type Session struct {
	Carrier     domain.Carrier
	Fingerprint Fingerprint
	Jar         http.CookieJar
	CreatedAt   time.Time

	mu     sync.Mutex
	tokens map[string]string
}

func newSession(carrier domain.Carrier, fp Fingerprint) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Session{
		Carrier:     carrier,
		Fingerprint: fp,
		Jar:         jar,
		CreatedAt:   time.Now(),
		tokens:      make(map[string]string),
	}, nil
}

// SetToken records a token (CSRF, challenge) discovered by a strategy so a
// later strategy in the ladder can reuse it. Safe for concurrent use.
func (s *Session) SetToken(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[name] = value
}

// Token returns a previously recorded token, or "".
func (s *Session) Token(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[name]
}

// Expired reports whether the session outlived the given TTL.
func (s *Session) Expired(ttl time.Duration) bool {
	return time.Since(s.CreatedAt) > ttl
}
