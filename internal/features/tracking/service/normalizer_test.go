package service

import (
	"testing"

	"ltl-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeStatus verifies the controlled-vocabulary mapping: ordered,
// case-insensitive, first match wins, Unknown default.
func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		text string
		want domain.Status
	}{
		{"Delivered", domain.StatusDelivered},
		{"DELIVERED to consignee", domain.StatusDelivered},
		{"Out for Delivery", domain.StatusOutForDelivery},
		{"out for delivery since 8am", domain.StatusOutForDelivery},
		{"In Transit", domain.StatusInTransit},
		{"Shipment in transit to destination", domain.StatusInTransit},
		{"Picked Up", domain.StatusPickedUp},
		{"Pickup scheduled", domain.StatusPickedUp},
		{"Delivery exception", domain.StatusException},
		{"Shipment delayed at terminal", domain.StatusException},
		{"At terminal", domain.StatusUnknown},
		{"", domain.StatusUnknown},
		{"some free text", domain.StatusUnknown},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, NormalizeStatus(tc.text), "text %q", tc.text)
	}
}

// TestNormalize_ConfidenceDiscount verifies the parser's base confidence is
// discounted when more than one rotation was needed.
func TestNormalize_ConfidenceDiscount(t *testing.T) {
	tn := domain.NewTrackingNumber("70123456")
	ext := &domain.Extraction{
		StatusText: "Delivered",
		Parser:     domain.ParserTabular,
		Confidence: 0.8,
	}

	noRotation := normalize(tn, domain.CarrierEstes, ext, domain.StrategyDirect, nil, 0)
	assert.Equal(t, 0.8, noRotation.Confidence)

	oneRotation := normalize(tn, domain.CarrierEstes, ext, domain.StrategyDirect, nil, 1)
	assert.Equal(t, 0.8, oneRotation.Confidence)

	threeRotations := normalize(tn, domain.CarrierEstes, ext, domain.StrategyDirect, nil, 3)
	assert.InDelta(t, 0.6, threeRotations.Confidence, 1e-9)
}

// TestNormalize_ConfidenceFloor verifies heavy discounting never reaches
// zero.
func TestNormalize_ConfidenceFloor(t *testing.T) {
	tn := domain.NewTrackingNumber("70123456")
	ext := &domain.Extraction{
		StatusText: "Delivered",
		Parser:     domain.ParserPattern,
		Confidence: 0.5,
	}

	result := normalize(tn, domain.CarrierEstes, ext, domain.StrategyBrowser, nil, 10)
	assert.Equal(t, 0.1, result.Confidence)
}

// TestNormalize_Provenance verifies strategy and parser are always attached.
func TestNormalize_Provenance(t *testing.T) {
	tn := domain.NewTrackingNumber("70123456")
	attempts := []domain.StrategyAttempt{
		{Strategy: domain.StrategyDirect},
		{Strategy: domain.StrategyAntiBot},
	}
	ext := &domain.Extraction{
		StatusText: "In Transit",
		Location:   "Nashville, TN",
		Parser:     domain.ParserAPIField,
		Confidence: 0.8,
	}

	result := normalize(tn, domain.CarrierTForce, ext, domain.StrategyAntiBot, attempts, 0)

	assert.True(t, result.Success)
	assert.Equal(t, "70123456", result.TrackingNumber)
	assert.Equal(t, domain.CarrierTForce, result.Carrier)
	assert.Equal(t, domain.StrategyAntiBot, result.Strategy)
	assert.Equal(t, domain.ParserAPIField, result.Parser)
	assert.Equal(t, []domain.StrategyID{domain.StrategyDirect, domain.StrategyAntiBot}, result.AttemptedStrategies)
	assert.False(t, result.RetrievedAt.IsZero())
}

// TestExhausted verifies the terminal failure shape.
func TestExhausted(t *testing.T) {
	tn := domain.NewTrackingNumber("70123456")
	attempts := []domain.StrategyAttempt{
		{Strategy: domain.StrategyDirect, Outcome: domain.OutcomeNetworkError},
		{Strategy: domain.StrategyMirror, Outcome: domain.OutcomeNoData},
	}

	result := exhausted(tn, domain.CarrierEstes, attempts, false, false)

	assert.False(t, result.Success)
	assert.Equal(t, domain.StatusUnknown, result.Status)
	assert.NotEmpty(t, result.FailureReason)
	assert.Contains(t, result.FailureReason, "direct, mirror")
	assert.Zero(t, result.Confidence)
}

// TestExhausted_ScriptReason verifies the reason names the script
// misclassification when it happened.
func TestExhausted_ScriptReason(t *testing.T) {
	tn := domain.NewTrackingNumber("70123456")
	attempts := []domain.StrategyAttempt{
		{Strategy: domain.StrategyDirect, Verdict: domain.VerdictScript, Outcome: domain.OutcomeNoData},
	}

	result := exhausted(tn, domain.CarrierEstes, attempts, true, false)
	assert.Contains(t, result.FailureReason, "script")
	assert.Contains(t, result.FailureReason, "misclassified")
}

// TestExhausted_DeadlineReason verifies a deadline-forced exhaustion is
// distinguishable from a genuinely exhausted list.
func TestExhausted_DeadlineReason(t *testing.T) {
	tn := domain.NewTrackingNumber("70123456")
	attempts := []domain.StrategyAttempt{
		{Strategy: domain.StrategyDirect, Outcome: domain.OutcomeTimeout},
	}

	result := exhausted(tn, domain.CarrierEstes, attempts, false, true)
	assert.False(t, result.Success)
	assert.Contains(t, result.FailureReason, "request deadline exceeded")
	assert.Contains(t, result.FailureReason, "direct")
	assert.NotContains(t, result.FailureReason, "all strategies exhausted")

	empty := exhausted(tn, domain.CarrierEstes, nil, false, true)
	assert.Contains(t, empty.FailureReason, "request deadline exceeded")
}

// TestExhausted_NoStrategies verifies even an empty ladder yields a reason.
func TestExhausted_NoStrategies(t *testing.T) {
	result := exhausted(domain.NewTrackingNumber("70123456"), domain.CarrierUnknown, nil, false, false)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.FailureReason)
}
