package proxy

import (
	"fmt"

	"ltl-tracker/internal/core/config"
)

// Settings contains egress proxy configuration for the browser strategy.
type Settings struct {
	Enabled  bool
	Hostname string
	Port     int
	Username string
	Password string
}

// FromConfig maps the app configuration into proxy settings.
func FromConfig(cfg config.ProxyConfig) Settings {
	return Settings{
		Enabled:  cfg.ProxyEnabled,
		Hostname: cfg.ProxyHostname,
		Port:     cfg.ProxyPort,
		Username: cfg.ProxyUsername,
		Password: cfg.ProxyPassword,
	}
}

// HasProxy returns true if proxy is enabled and configured.
func (p Settings) HasProxy() bool {
	return p.Enabled && p.Hostname != "" && p.Port > 0
}

// HasCredentials returns true if the upstream proxy requires auth.
func (p Settings) HasCredentials() bool {
	return p.Username != "" && p.Password != ""
}

// HostPort returns the proxy host:port string (e.g., "http://geo.example.com:12321").
func (p Settings) HostPort() string {
	if !p.HasProxy() {
		return ""
	}
	return fmt.Sprintf("http://%s:%d", p.Hostname, p.Port)
}

// FullURL returns the full proxy URL with credentials.
func (p Settings) FullURL() string {
	if !p.HasProxy() {
		return ""
	}
	if p.HasCredentials() {
		return fmt.Sprintf("http://%s:%s@%s:%d", p.Username, p.Password, p.Hostname, p.Port)
	}
	return p.HostPort()
}
