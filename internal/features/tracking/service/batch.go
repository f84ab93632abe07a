package service

import (
	"context"
	"sync"

	"ltl-tracker/internal/features/tracking/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// defaultBatchLimit is the global worker bound when none is configured: a
// small multiple of the known-carrier count.
const defaultBatchLimit = 12

// carrierGates enforces each carrier's own concurrency and rate ceilings,
// independent of other carriers. Gates are created lazily from the profile's
// configured ceilings.
type carrierGates struct {
	mu    sync.Mutex
	gates map[domain.Carrier]*carrierGate
}

type carrierGate struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

func newCarrierGates() *carrierGates {
	return &carrierGates{gates: make(map[domain.Carrier]*carrierGate)}
}

func (g *carrierGates) gate(profile *domain.CarrierProfile) *carrierGate {
	g.mu.Lock()
	defer g.mu.Unlock()

	gate, ok := g.gates[profile.Carrier]
	if !ok {
		gate = &carrierGate{
			sem:     semaphore.NewWeighted(int64(profile.MaxConcurrent)),
			limiter: rate.NewLimiter(rate.Limit(profile.RequestsPerSecond), 1),
		}
		g.gates[profile.Carrier] = gate
	}
	return gate
}

// TrackBatch implements ports.Tracker. Items fan out under the global worker
// bound; within that, each carrier's gate caps in-flight attempts and request
// rate. One item's exhaustion never cancels its siblings, so workers return
// nil errors and failures live in the per-item results.
func (s *TrackingService) TrackBatch(ctx context.Context, raws []string) *domain.BatchJob {
	job := &domain.BatchJob{
		Results:   make([]*domain.TrackingResult, len(raws)),
		Attempted: len(raws),
		ByCarrier: make(map[domain.Carrier]int),
	}

	g := new(errgroup.Group)
	g.SetLimit(s.batchLimit)

	for i, raw := range raws {
		i, raw := i, raw
		g.Go(func() error {
			job.Results[i] = s.Track(ctx, raw, domain.CarrierUnknown)
			return nil
		})
	}
	_ = g.Wait()

	for _, result := range job.Results {
		if result.Success {
			job.Succeeded++
		} else {
			job.Failed++
		}
		job.ByCarrier[result.Carrier]++
	}
	return job
}
