package strategies

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ltl-tracker/internal/core/logger"
	"ltl-tracker/internal/core/proxy"
	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/fingerprint"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Browser is the last rung: render the tracking page in headless Chromium.
// When the profile names an XHR hijack pattern, the strategy intercepts that
// call and returns its body; otherwise it returns the rendered page HTML
// after the page settles.
type Browser struct {
	proxy  proxy.Settings
	logger *zap.Logger
}

// NewBrowser builds the browser-rendering strategy.
func NewBrowser(proxySettings proxy.Settings) *Browser {
	return &Browser{
		proxy:  proxySettings,
		logger: logger.Named("strategy.browser"),
	}
}

// ID implements ports.Strategy.
func (s *Browser) ID() domain.StrategyID {
	return domain.StrategyBrowser
}

// Timeout implements ports.Strategy.
func (s *Browser) Timeout() time.Duration {
	return timeoutBrowser
}

// Fetch implements ports.Strategy.
func (s *Browser) Fetch(ctx context.Context, sess *fingerprint.Session, profile *domain.CarrierProfile, tn domain.TrackingNumber) ([]byte, error) {
	if profile.TrackingURL == "" {
		return nil, ErrNotConfigured
	}
	pageURL := trackingPageURL(profile.TrackingURL, tn.Normalized)

	// Chromium cannot take proxy credentials on the command line; bounce
	// through a local forwarding proxy when the upstream needs auth.
	var localProxyAddr string
	if s.proxy.HasProxy() && s.proxy.HasCredentials() {
		forwarder, err := proxy.NewForwardingProxy(s.proxy.FullURL())
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy forwarder: %w", err)
		}
		localProxyAddr, err = forwarder.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to start proxy forwarder: %w", err)
		}
		defer forwarder.Stop()
	} else if s.proxy.HasProxy() {
		localProxyAddr = s.proxy.HostPort()
	}

	s.logger.Debug("Launching browser",
		zap.String("carrier", string(profile.Carrier)),
		zap.Bool("proxy_enabled", s.proxy.HasProxy()),
		zap.String("hijack_pattern", profile.HijackPattern),
	)

	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)

	if localProxyAddr != "" {
		l = l.Proxy(localProxyAddr)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	// Present the session's identity inside the browser too.
	_ = page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      sess.Fingerprint.UserAgent,
		AcceptLanguage: sess.Fingerprint.AcceptLanguage,
	})

	if profile.HijackPattern != "" {
		return s.fetchViaHijack(ctx, page, pageURL, profile.HijackPattern)
	}
	return s.fetchRendered(ctx, page, pageURL)
}

// fetchViaHijack intercepts the carrier's own XHR call and returns its body,
// skipping the rendered markup entirely.
func (s *Browser) fetchViaHijack(ctx context.Context, page *rod.Page, pageURL, pattern string) ([]byte, error) {
	router := page.HijackRequests()
	defer router.MustStop()

	done := make(chan []byte, 1)

	router.MustAdd(pattern, func(hijack *rod.Hijack) {
		if err := hijack.LoadResponse(http.DefaultClient, true); err != nil {
			s.logger.Error("Failed to load hijacked response", zap.Error(err))
			return
		}
		select {
		case done <- []byte(hijack.Response.Body()):
		default:
		}
	})

	go router.Run()

	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	select {
	case body := <-done:
		if len(body) == 0 {
			return nil, ErrEmptyBody
		}
		return body, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for hijacked response: %w", ctx.Err())
	}
}

// fetchRendered waits for the page to settle and returns its HTML.
func (s *Browser) fetchRendered(ctx context.Context, page *rod.Page, pageURL string) ([]byte, error) {
	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("navigation failed: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("page load failed: %w", err)
	}
	// Give SPA frameworks a beat to paint their data.
	if err := page.WaitIdle(3 * time.Second); err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered page: %w", err)
	}
	if html == "" {
		return nil, ErrEmptyBody
	}
	return []byte(html), nil
}
