package fingerprint

import (
	browser "github.com/EDDYCJY/fake-useragent"
)

// deviceProfile is one entry in the static catalog of realistic browser
// identities. The catalog stays small on purpose: a consistent handful of
// believable identities beats an endless stream of novel ones.
type deviceProfile struct {
	Name           string
	Platform       string
	Mobile         bool
	Engine         string
	TLSProfile     string
	AcceptLanguage string
	family         string
}

var catalog = []deviceProfile{
	{Name: "win-chrome", Platform: "Windows", Engine: "Blink", TLSProfile: "chrome-120", AcceptLanguage: "en-US,en;q=0.9", family: "chrome"},
	{Name: "mac-chrome", Platform: "macOS", Engine: "Blink", TLSProfile: "chrome-120", AcceptLanguage: "en-US,en;q=0.9", family: "chrome"},
	{Name: "linux-chrome", Platform: "Linux", Engine: "Blink", TLSProfile: "chrome-119", AcceptLanguage: "en-US,en;q=0.8", family: "chrome"},
	{Name: "win-firefox", Platform: "Windows", Engine: "Gecko", TLSProfile: "firefox-121", AcceptLanguage: "en-US,en;q=0.5", family: "firefox"},
	{Name: "mac-safari", Platform: "macOS", Engine: "WebKit", TLSProfile: "safari-17", AcceptLanguage: "en-US,en;q=0.9", family: "safari"},
	{Name: "android-chrome", Platform: "Android", Mobile: true, Engine: "Blink", TLSProfile: "chrome-mobile-120", AcceptLanguage: "en-US,en;q=0.9", family: "chrome"},
}

// fallbackUserAgents keep the identity intact when the UA library cannot
// reach its corpus: it returns "" on any fetch failure, and an empty
// User-Agent would let the HTTP client stamp its own banner on every request.
var fallbackUserAgents = map[string]string{
	"chrome":  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"firefox": "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"safari":  "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

// userAgent resolves a realistic user-agent string for the profile's browser
// family, falling back to a static one when the library comes back empty.
func (d deviceProfile) userAgent() string {
	var ua string
	switch d.family {
	case "firefox":
		ua = browser.Firefox()
	case "safari":
		ua = browser.Safari()
	default:
		ua = browser.Chrome()
	}
	if ua == "" {
		ua = fallbackUserAgents[d.family]
	}
	return ua
}
