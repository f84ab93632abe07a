package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ltl-tracker/internal/core/cache"
	"ltl-tracker/internal/core/logger"
	"ltl-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

// ResultCache keeps successful results for a short window so repeated lookups
// of the same shipment do not re-run the ladder. Failures are never cached:
// a blocked carrier may answer on the next try.
type ResultCache struct {
	store cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewResultCache wraps a cache backend. A nil backend disables caching.
func NewResultCache(store cache.Cache, ttl time.Duration) *ResultCache {
	return &ResultCache{
		store: store,
		ttl:   ttl,
		log:   logger.Named("result_cache"),
	}
}

func resultKey(carrier domain.Carrier, tn domain.TrackingNumber) string {
	return fmt.Sprintf("tracking:result:%s:%s", carrier, tn.Normalized)
}

// Get returns the cached result, or nil on miss. Cache errors degrade to a
// miss: the ladder is always available as the source of truth.
func (rc *ResultCache) Get(ctx context.Context, carrier domain.Carrier, tn domain.TrackingNumber) *domain.TrackingResult {
	if rc == nil || rc.store == nil {
		return nil
	}

	raw, err := rc.store.Get(ctx, resultKey(carrier, tn))
	if err != nil {
		if err != cache.ErrCacheMiss {
			rc.log.Warn("Result cache read failed", zap.Error(err))
		}
		return nil
	}

	var result domain.TrackingResult
	if err := json.Unmarshal(raw, &result); err != nil {
		rc.log.Warn("Result cache entry corrupt, ignoring", zap.Error(err))
		return nil
	}
	return &result
}

// Store caches a successful result. Unsuccessful results are dropped.
func (rc *ResultCache) Store(ctx context.Context, result *domain.TrackingResult) {
	if rc == nil || rc.store == nil || result == nil || !result.Success {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		rc.log.Warn("Result cache encode failed", zap.Error(err))
		return
	}

	tn := domain.TrackingNumber{Normalized: result.TrackingNumber}
	if err := rc.store.Set(ctx, resultKey(result.Carrier, tn), raw, rc.ttl); err != nil {
		rc.log.Warn("Result cache write failed", zap.Error(err))
	}
}
