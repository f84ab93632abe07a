package service

import (
	"context"
	"testing"
	"time"

	"ltl-tracker/internal/core/cache"
	"ltl-tracker/internal/features/tracking/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResultCache(t *testing.T, ttl time.Duration) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	adapter, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return NewResultCache(adapter, ttl), mr
}

// TestResultCache_RoundTrip verifies successful results survive store/get.
func TestResultCache_RoundTrip(t *testing.T) {
	rc, _ := testResultCache(t, time.Minute)
	ctx := context.Background()
	tn := domain.NewTrackingNumber("701234567")

	assert.Nil(t, rc.Get(ctx, domain.CarrierEstes, tn))

	result := &domain.TrackingResult{
		TrackingNumber: tn.Normalized,
		Carrier:        domain.CarrierEstes,
		Status:         domain.StatusDelivered,
		Location:       "Columbus, OH",
		Success:        true,
		Strategy:       domain.StrategyDirect,
		Parser:         domain.ParserTabular,
		Confidence:     0.8,
		RetrievedAt:    time.Now().UTC(),
	}
	rc.Store(ctx, result)

	cached := rc.Get(ctx, domain.CarrierEstes, tn)
	require.NotNil(t, cached)
	assert.Equal(t, result.TrackingNumber, cached.TrackingNumber)
	assert.Equal(t, result.Status, cached.Status)
	assert.Equal(t, result.Location, cached.Location)
	assert.Equal(t, result.Confidence, cached.Confidence)
}

// TestResultCache_FailuresNotCached verifies unsuccessful results are
// dropped: a blocked carrier may answer on the next try.
func TestResultCache_FailuresNotCached(t *testing.T) {
	rc, _ := testResultCache(t, time.Minute)
	ctx := context.Background()
	tn := domain.NewTrackingNumber("701234567")

	rc.Store(ctx, &domain.TrackingResult{
		TrackingNumber: tn.Normalized,
		Carrier:        domain.CarrierEstes,
		Status:         domain.StatusUnknown,
		Success:        false,
		FailureReason:  "all strategies exhausted (direct)",
	})

	assert.Nil(t, rc.Get(ctx, domain.CarrierEstes, tn))
}

// TestResultCache_TTL verifies entries expire.
func TestResultCache_TTL(t *testing.T) {
	rc, mr := testResultCache(t, time.Second)
	ctx := context.Background()
	tn := domain.NewTrackingNumber("701234567")

	rc.Store(ctx, &domain.TrackingResult{
		TrackingNumber: tn.Normalized,
		Carrier:        domain.CarrierEstes,
		Success:        true,
	})
	require.NotNil(t, rc.Get(ctx, domain.CarrierEstes, tn))

	mr.FastForward(2 * time.Second)
	assert.Nil(t, rc.Get(ctx, domain.CarrierEstes, tn))
}

// TestResultCache_KeyedByCarrier verifies the same number under different
// carriers caches independently.
func TestResultCache_KeyedByCarrier(t *testing.T) {
	rc, _ := testResultCache(t, time.Minute)
	ctx := context.Background()
	tn := domain.NewTrackingNumber("701234567")

	rc.Store(ctx, &domain.TrackingResult{
		TrackingNumber: tn.Normalized,
		Carrier:        domain.CarrierEstes,
		Success:        true,
	})

	assert.NotNil(t, rc.Get(ctx, domain.CarrierEstes, tn))
	assert.Nil(t, rc.Get(ctx, domain.CarrierFedExFreight, tn))
}

// TestResultCache_NilBackendIsNoop verifies a disabled cache degrades to
// pass-through.
func TestResultCache_NilBackendIsNoop(t *testing.T) {
	rc := NewResultCache(nil, time.Minute)
	ctx := context.Background()
	tn := domain.NewTrackingNumber("701234567")

	rc.Store(ctx, &domain.TrackingResult{TrackingNumber: tn.Normalized, Success: true})
	assert.Nil(t, rc.Get(ctx, domain.CarrierEstes, tn))
}
