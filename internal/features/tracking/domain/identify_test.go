package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestIdentify_KnownFormats verifies format rules route to the right carrier.
func TestIdentify_KnownFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		carrier Carrier
	}{
		{"FedExPrefixed", "RS12345678", CarrierFedExFreight},
		{"RLPrefixed", "I123456789", CarrierRLCarriers},
		{"TForcePrefixed", "2205123456789", CarrierTForce},
		{"Peninsula536", "536246546", CarrierPeninsula},
		{"Peninsula537", "537001122", CarrierPeninsula},
		{"Peninsula622", "62212345", CarrierPeninsula},
		{"EstesSevenRange", "701234567", CarrierEstes},
		{"EstesTenDigit2", "2123456789", CarrierEstes},
		{"EstesTenDigit0", "0123456789", CarrierEstes},
		{"FedExTenDigit", "9123456789", CarrierFedExFreight},
		{"RLNineDigit", "312345678", CarrierRLCarriers},
		{"TForceNineDigit", "412345678", CarrierTForce},
		{"EstesEightDigit", "81234567", CarrierEstes},
		{"AverittSevenDigit", "1234567", CarrierAveritt},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			carrier, confidence := Identify(NewTrackingNumber(tc.input))
			assert.Equal(t, tc.carrier, carrier)
			assert.Greater(t, confidence, 0.0)
		})
	}
}

// TestIdentify_PrefixOutranksDigitCount verifies that specific prefixed
// formats win over the broad digit-count rules sharing the same length.
func TestIdentify_PrefixOutranksDigitCount(t *testing.T) {
	// Nine digits would match the TForce catch-all, but the 536 prefix is
	// Peninsula's.
	carrier, confidence := Identify(NewTrackingNumber("536246546"))
	assert.Equal(t, CarrierPeninsula, carrier)
	assert.Equal(t, 0.9, confidence)
}

// TestIdentify_Unknown verifies the fallback for unrecognized input.
func TestIdentify_Unknown(t *testing.T) {
	for _, input := range []string{"", "ABC", "12345", "XYZ123456789012345678"} {
		carrier, confidence := Identify(NewTrackingNumber(input))
		assert.Equal(t, CarrierUnknown, carrier, "input %q", input)
		assert.Equal(t, 0.0, confidence, "input %q", input)
	}
}

// TestIdentify_Deterministic verifies identical normalized input always
// yields identical output.
func TestIdentify_Deterministic(t *testing.T) {
	inputs := []string{"RS12345678", "536246546", "70123456", "garbage", "1234567"}
	for _, input := range inputs {
		tn := NewTrackingNumber(input)
		firstCarrier, firstConfidence := Identify(tn)
		for i := 0; i < 100; i++ {
			carrier, confidence := Identify(tn)
			assert.Equal(t, firstCarrier, carrier)
			assert.Equal(t, firstConfidence, confidence)
		}
	}
}

// TestIdentify_SeparatorsNormalized verifies mixed separators map to the same
// carrier as the bare number.
func TestIdentify_SeparatorsNormalized(t *testing.T) {
	bare, _ := Identify(NewTrackingNumber("RS12345678"))
	hyphened, _ := Identify(NewTrackingNumber("rs-1234-5678"))
	spaced, _ := Identify(NewTrackingNumber(" RS 1234 5678 "))
	dotted, _ := Identify(NewTrackingNumber("RS.1234.5678"))

	assert.Equal(t, bare, hyphened)
	assert.Equal(t, bare, spaced)
	assert.Equal(t, bare, dotted)
	assert.Equal(t, CarrierFedExFreight, bare)
}
