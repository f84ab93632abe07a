package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewTrackingNumber verifies normalization: trim, upper-case, strip
// separators, preserve the raw input.
func TestNewTrackingNumber(t *testing.T) {
	tests := []struct {
		raw        string
		normalized string
	}{
		{"  rs-1234-5678  ", "RS12345678"},
		{"123 456 789", "123456789"},
		{"123.456.789", "123456789"},
		{"123/456/789", "123456789"},
		{"RS12345678", "RS12345678"},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range tests {
		tn := NewTrackingNumber(tc.raw)
		assert.Equal(t, tc.raw, tn.Raw)
		assert.Equal(t, tc.normalized, tn.Normalized)
	}
}

// TestTrackingNumber_IsEmpty verifies emptiness checks the normalized form.
func TestTrackingNumber_IsEmpty(t *testing.T) {
	assert.True(t, NewTrackingNumber("").IsEmpty())
	assert.True(t, NewTrackingNumber(" - . ").IsEmpty())
	assert.False(t, NewTrackingNumber("1").IsEmpty())
}

// TestCarrierProfile_ApplyDefaults verifies zero-valued profile fields get
// the built-in fallbacks.
func TestCarrierProfile_ApplyDefaults(t *testing.T) {
	p := &CarrierProfile{Carrier: Carrier("test_carrier")}
	p.ApplyDefaults()

	assert.Equal(t, defaultStrategies, p.Strategies)
	assert.NotEmpty(t, p.MirrorURLs)
	assert.Equal(t, 5, p.MaxConcurrent)
	assert.Equal(t, 2.0, p.RequestsPerSecond)
}

// TestSeedProfiles verifies every seed profile is fully defaulted.
func TestSeedProfiles(t *testing.T) {
	profiles := SeedProfiles()
	assert.NotEmpty(t, profiles)

	for carrier, p := range profiles {
		assert.Equal(t, carrier, p.Carrier)
		assert.NotEmpty(t, p.Strategies, "carrier %s", carrier)
		assert.NotEmpty(t, p.MirrorURLs, "carrier %s", carrier)
		assert.Greater(t, p.MaxConcurrent, 0, "carrier %s", carrier)
		assert.Greater(t, p.RequestsPerSecond, 0.0, "carrier %s", carrier)
	}
}
