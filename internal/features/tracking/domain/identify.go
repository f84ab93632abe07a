package domain

import "regexp"

// identRule maps one PRO number format to a carrier. Rules are evaluated in
// order against the normalized number; the first match wins.
type identRule struct {
	carrier    Carrier
	confidence float64
	pattern    *regexp.Regexp
}

// identRules is ordered most-specific first. Prefixed formats (RS, I, 2205,
// 536/537/622) outrank the broad digit-count formats several carriers share,
// so a number like 536246546 routes to Peninsula, not TForce.
var identRules = []identRule{
	{CarrierFedExFreight, 0.95, regexp.MustCompile(`^RS\d{8}$`)},
	{CarrierRLCarriers, 0.95, regexp.MustCompile(`^I\d{9}$`)},
	{CarrierTForce, 0.9, regexp.MustCompile(`^2205\d{9}$`)},
	{CarrierPeninsula, 0.9, regexp.MustCompile(`^53[67]\d{6}$`)},
	{CarrierPeninsula, 0.85, regexp.MustCompile(`^622\d{5}$`)},
	{CarrierEstes, 0.8, regexp.MustCompile(`^7[0-4]\d{7}$`)},
	{CarrierEstes, 0.75, regexp.MustCompile(`^2\d{9}$`)},
	{CarrierEstes, 0.7, regexp.MustCompile(`^[0167]\d{9}$`)},
	{CarrierFedExFreight, 0.6, regexp.MustCompile(`^[1-9]\d{9}$`)},
	{CarrierRLCarriers, 0.6, regexp.MustCompile(`^[0-3]\d{8}$`)},
	{CarrierTForce, 0.5, regexp.MustCompile(`^\d{9}$`)},
	{CarrierEstes, 0.5, regexp.MustCompile(`^\d{8}$`)},
	{CarrierAveritt, 0.4, regexp.MustCompile(`^\d{7}$`)},
}

// Identify maps a tracking number to a carrier tag plus confidence.
// It is pure and deterministic: identical normalized input always yields
// identical output. Unknown numbers return (CarrierUnknown, 0).
func Identify(tn TrackingNumber) (Carrier, float64) {
	if tn.IsEmpty() {
		return CarrierUnknown, 0
	}
	for _, rule := range identRules {
		if rule.pattern.MatchString(tn.Normalized) {
			return rule.carrier, rule.confidence
		}
	}
	return CarrierUnknown, 0
}
