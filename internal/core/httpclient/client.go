package httpclient

import (
	"net/http"
	"time"

	"ltl-tracker/internal/core/logger"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// LoggingRoundTripper captures request details for debugging.
type LoggingRoundTripper struct {
	// Proxied is the underlying RoundTripper to execute the request.
	Proxied http.RoundTripper
}

// RoundTrip executes the request and logs details.
func (lrt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	logger.Get().Debug("HTTP Request Started",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	)

	resp, err := lrt.Proxied.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		logger.Get().Error("HTTP Request Failed",
			zap.String("method", req.Method),
			zap.String("url", req.URL.String()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Get().Debug("HTTP Request Completed",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	return resp, nil
}

// Options configures a per-session resty client.
type Options struct {
	// Jar is the session's cookie jar, shared across strategy attempts.
	Jar http.CookieJar
	// Headers is the fingerprint's browser-like header set.
	Headers map[string]string
	// Timeout bounds each request end to end.
	Timeout time.Duration
	// Bypass wraps the transport with the cloudflare bypass round tripper.
	Bypass bool
}

// New returns a resty client carrying the session's identity. Every strategy
// that talks plain HTTP goes through here so cookie state survives between
// strategies and all traffic shares the logging middleware.
func New(opts Options) *resty.Client {
	client := resty.New()

	if opts.Jar != nil {
		client.SetCookieJar(opts.Jar)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	for k, v := range opts.Headers {
		client.SetHeader(k, v)
	}

	var transport http.RoundTripper = &http.Transport{
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if opts.Bypass {
		transport = cloudflarebp.AddCloudFlareByPass(transport)
	}
	client.GetClient().Transport = &LoggingRoundTripper{Proxied: transport}

	return client
}
