package service

import (
	"context"

	"ltl-tracker/internal/core/logger"
	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

var _ ports.Tracker = (*TrackingService)(nil)

// TrackingService is the in-process API boundary: it routes a tracking
// number to a carrier profile, consults the result cache, and delegates
// retrieval to the ladder. It implements ports.Tracker.
type TrackingService struct {
	profiles map[domain.Carrier]*domain.CarrierProfile
	ladder   *Ladder
	cache    *ResultCache
	gates    *carrierGates
	// batchLimit bounds workers across all carriers; per-carrier ceilings
	// are enforced by the gates.
	batchLimit int
	log        *zap.Logger
}

// NewTrackingService wires the facade. The cache may be nil.
func NewTrackingService(
	profiles map[domain.Carrier]*domain.CarrierProfile,
	ladder *Ladder,
	resultCache *ResultCache,
	batchLimit int,
) *TrackingService {
	if batchLimit <= 0 {
		batchLimit = defaultBatchLimit
	}
	return &TrackingService{
		profiles:   profiles,
		ladder:     ladder,
		cache:      resultCache,
		gates:      newCarrierGates(),
		batchLimit: batchLimit,
		log:        logger.Named("tracking"),
	}
}

// Track implements ports.Tracker. It always returns a result, never an
// error: engine failures surface as TrackingResult{Success: false}.
func (s *TrackingService) Track(ctx context.Context, raw string, hint domain.Carrier) *domain.TrackingResult {
	tn, profile := s.route(raw, hint)
	if tn.IsEmpty() {
		return failure(tn, domain.CarrierUnknown, "tracking number is empty")
	}

	// Single requests share the per-carrier ceilings with batch workers.
	gate := s.gates.gate(profile)
	if err := gate.sem.Acquire(ctx, 1); err != nil {
		return failure(tn, profile.Carrier, "request canceled before dispatch")
	}
	defer gate.sem.Release(1)
	if err := gate.limiter.Wait(ctx); err != nil {
		return failure(tn, profile.Carrier, "request canceled before dispatch")
	}

	return s.trackResolved(ctx, tn, profile)
}

// route normalizes the number and resolves the carrier profile. A hint wins
// over format identification; an unidentified number falls through to the
// mirror-only profile so aggregators still get a chance.
func (s *TrackingService) route(raw string, hint domain.Carrier) (domain.TrackingNumber, *domain.CarrierProfile) {
	tn := domain.NewTrackingNumber(raw)
	if tn.IsEmpty() {
		return tn, nil
	}

	carrier := hint
	if carrier == "" || carrier == domain.CarrierUnknown {
		identified, confidence := domain.Identify(tn)
		carrier = identified
		s.log.Debug("Carrier identified",
			zap.String("tracking_number", tn.Normalized),
			zap.String("carrier", string(carrier)),
			zap.Float64("confidence", confidence),
		)
	}

	if profile, ok := s.profiles[carrier]; ok {
		return tn, profile
	}
	return tn, unknownCarrierProfile()
}

// trackResolved is the cache-then-ladder path shared by single and batch
// tracking.
func (s *TrackingService) trackResolved(ctx context.Context, tn domain.TrackingNumber, profile *domain.CarrierProfile) *domain.TrackingResult {
	if cached := s.cache.Get(ctx, profile.Carrier, tn); cached != nil {
		s.log.Debug("Result cache hit",
			zap.String("carrier", string(profile.Carrier)),
			zap.String("tracking_number", tn.Normalized),
		)
		return cached
	}

	result := s.ladder.Run(ctx, profile, tn)
	s.cache.Store(ctx, result)
	return result
}

// unknownCarrierProfile is the routing target for numbers no format rule
// matched: carrier sites cannot be guessed, but third-party mirrors index by
// number alone.
func unknownCarrierProfile() *domain.CarrierProfile {
	p := &domain.CarrierProfile{
		Carrier:    domain.CarrierUnknown,
		Name:       "Unknown carrier",
		Strategies: []domain.StrategyID{domain.StrategyMirror},
	}
	p.ApplyDefaults()
	return p
}
