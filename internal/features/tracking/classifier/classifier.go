// Package classifier gates every raw payload before any parser runs. It is
// the guard against the failure mode where a network layer hands back a
// JavaScript bundle and the presence of the tracking-number substring is
// mistaken for real data.
package classifier

import (
	"regexp"
	"strings"

	"ltl-tracker/internal/features/tracking/domain"
)

// Options tune the ordered classification checks. Zero values fall back to
// the defaults below.
type Options struct {
	// MinBytes is the smallest payload that can be a real tracking page.
	MinBytes int
	// ScriptMarkerThreshold is how many code-syntax markers a payload may
	// carry before it is treated as script rather than content.
	ScriptMarkerThreshold int
	// RealPageBytes is the size above which a marker-heavy payload is
	// still considered a full page (real pages embed scripts too).
	RealPageBytes int
}

const (
	defaultMinBytes              = 500
	defaultScriptMarkerThreshold = 6
	defaultRealPageBytes         = 20000
)

// blockKeywords is the carrier-agnostic set of block-page markers, matched
// case-insensitively anywhere in the payload.
var blockKeywords = []string{
	"access denied",
	"captcha",
	"cf-ray",
	"checking your browser",
	"ddos protection",
	"please verify you are a human",
	"rate limit",
	"security check",
	"request unsuccessful",
	"pardon our interruption",
	"unusual traffic",
}

// scriptMarkers are syntax fragments that dominate JavaScript bundles but
// are rare in rendered tracking content.
var scriptMarkers = []*regexp.Regexp{
	regexp.MustCompile(`\bfunction\s*\(`),
	regexp.MustCompile(`\bvar\s+\w+\s*=`),
	regexp.MustCompile(`\bconst\s+\w+\s*=`),
	regexp.MustCompile(`\blet\s+\w+\s*=`),
	regexp.MustCompile(`document\.\w+\(`),
	regexp.MustCompile(`window\.\w+\s*=`),
	regexp.MustCompile(`=>\s*\{`),
	regexp.MustCompile(`\breturn\s+\w+;`),
	regexp.MustCompile(`\.push\(`),
	regexp.MustCompile(`gtm\.js|googletagmanager|analytics\.js`),
}

// Classifier labels raw payloads. It is purely functional over local data
// and safe for concurrent use.
type Classifier struct {
	opts Options
}

// New builds a Classifier, filling unset options with defaults.
func New(opts Options) *Classifier {
	if opts.MinBytes <= 0 {
		opts.MinBytes = defaultMinBytes
	}
	if opts.ScriptMarkerThreshold <= 0 {
		opts.ScriptMarkerThreshold = defaultScriptMarkerThreshold
	}
	if opts.RealPageBytes <= 0 {
		opts.RealPageBytes = defaultRealPageBytes
	}
	return &Classifier{opts: opts}
}

// Classify runs the ordered checks and returns the first matching verdict.
// The profile may be nil; it only contributes extra block keywords.
func (c *Classifier) Classify(payload []byte, profile *domain.CarrierProfile) domain.Verdict {
	if len(payload) < c.opts.MinBytes {
		return domain.VerdictEmpty
	}

	lower := strings.ToLower(string(payload))

	for _, kw := range blockKeywords {
		if strings.Contains(lower, kw) {
			return domain.VerdictAntiBot
		}
	}
	if profile != nil {
		for _, kw := range profile.BlockKeywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return domain.VerdictAntiBot
			}
		}
	}

	// A short payload dominated by code syntax is a script bundle, no
	// matter what substrings it happens to contain.
	if len(payload) < c.opts.RealPageBytes && c.markerCount(lower) >= c.opts.ScriptMarkerThreshold {
		return domain.VerdictScript
	}

	return domain.VerdictUsable
}

func (c *Classifier) markerCount(lower string) int {
	count := 0
	for _, marker := range scriptMarkers {
		count += len(marker.FindAllStringIndex(lower, c.opts.ScriptMarkerThreshold+1))
		if count >= c.opts.ScriptMarkerThreshold {
			return count
		}
	}
	return count
}

// LooksLikeCode reports whether a short text fragment (a candidate status or
// location) itself reads like code. Parsers use this as defense in depth on
// top of the payload-level gate.
func LooksLikeCode(text string) bool {
	lower := strings.ToLower(text)
	if strings.ContainsAny(lower, "{};") {
		return true
	}
	for _, frag := range []string{"function", "var ", "const ", "=>", "document.", "window.", "gtm.", "</script", "<script"} {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
