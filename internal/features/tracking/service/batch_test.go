package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ltl-tracker/internal/features/tracking/classifier"
	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/fingerprint"
	"ltl-tracker/internal/features/tracking/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inflightMeter tracks the high-water mark of simultaneous attempts per
// carrier, the instrumentation the concurrency-cap scenario needs.
type inflightMeter struct {
	mu      sync.Mutex
	current map[domain.Carrier]int
	peak    map[domain.Carrier]int
}

func newInflightMeter() *inflightMeter {
	return &inflightMeter{
		current: make(map[domain.Carrier]int),
		peak:    make(map[domain.Carrier]int),
	}
}

func (m *inflightMeter) enter(carrier domain.Carrier) {
	m.mu.Lock()
	m.current[carrier]++
	if m.current[carrier] > m.peak[carrier] {
		m.peak[carrier] = m.current[carrier]
	}
	m.mu.Unlock()
}

func (m *inflightMeter) exit(carrier domain.Carrier) {
	m.mu.Lock()
	m.current[carrier]--
	m.mu.Unlock()
}

func (m *inflightMeter) peakFor(carrier domain.Carrier) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak[carrier]
}

func batchProfiles(carriers []domain.Carrier, maxConcurrent int) map[domain.Carrier]*domain.CarrierProfile {
	profiles := make(map[domain.Carrier]*domain.CarrierProfile, len(carriers))
	for _, c := range carriers {
		profiles[c] = &domain.CarrierProfile{
			Carrier:           c,
			Strategies:        []domain.StrategyID{domain.StrategyDirect},
			MaxConcurrent:     maxConcurrent,
			RequestsPerSecond: 10000,
		}
	}
	return profiles
}

func batchService(t *testing.T, profiles map[domain.Carrier]*domain.CarrierProfile, strat ports.Strategy, workers int) *TrackingService {
	t.Helper()

	sessions := fingerprint.NewManager(fingerprint.Options{TTL: time.Minute, PoolSize: 3})
	t.Cleanup(sessions.Shutdown)

	ladder := NewLadder(
		[]ports.Strategy{strat},
		sessions,
		classifier.New(classifier.Options{MinBytes: 10}),
		[]ports.Parser{successParser()},
		LadderOptions{RequestDeadline: 10 * time.Second, AttemptPauseMax: time.Millisecond},
	)

	return NewTrackingService(profiles, ladder, NewResultCache(nil, 0), workers)
}

// TestTrackBatch_PerCarrierConcurrencyCap is the 50-numbers-across-4-carriers
// scenario: with a per-carrier cap of 5, no carrier ever sees more than 5
// simultaneous in-flight attempts.
func TestTrackBatch_PerCarrierConcurrencyCap(t *testing.T) {
	carriers := []domain.Carrier{
		domain.CarrierFedExFreight,
		domain.CarrierRLCarriers,
		domain.CarrierEstes,
		domain.CarrierTForce,
	}

	meter := newInflightMeter()
	strat := &mockStrategy{id: domain.StrategyDirect, fetch: func(ctx context.Context, sess *fingerprint.Session) ([]byte, error) {
		meter.enter(sess.Carrier)
		defer meter.exit(sess.Carrier)
		time.Sleep(5 * time.Millisecond)
		return usablePayload, nil
	}}

	// A worker bound far above the per-carrier caps, so the gates are what
	// holds the line.
	svc := batchService(t, batchProfiles(carriers, 5), strat, 50)

	var numbers []string
	for i := 0; i < 50; i++ {
		switch i % 4 {
		case 0:
			numbers = append(numbers, fmt.Sprintf("RS%08d", i))
		case 1:
			numbers = append(numbers, fmt.Sprintf("I%09d", i))
		case 2:
			numbers = append(numbers, fmt.Sprintf("70%07d", i))
		case 3:
			numbers = append(numbers, fmt.Sprintf("2205%09d", i))
		}
	}

	job := svc.TrackBatch(context.Background(), numbers)

	require.Len(t, job.Results, 50)
	assert.Equal(t, 50, job.Attempted)
	assert.Equal(t, 50, job.Succeeded)
	assert.Equal(t, 0, job.Failed)

	for _, carrier := range carriers {
		assert.Greater(t, job.ByCarrier[carrier], 0, "carrier %s", carrier)
		assert.LessOrEqual(t, meter.peakFor(carrier), 5, "carrier %s exceeded its cap", carrier)
	}
}

// TestTrackBatch_PartialFailure verifies one item's failure never aborts the
// rest of the batch.
func TestTrackBatch_PartialFailure(t *testing.T) {
	strat := &mockStrategy{id: domain.StrategyDirect, fetch: func(ctx context.Context, sess *fingerprint.Session) ([]byte, error) {
		return usablePayload, nil
	}}
	svc := batchService(t, batchProfiles([]domain.Carrier{domain.CarrierEstes}, 5), strat, 4)

	job := svc.TrackBatch(context.Background(), []string{"701234567", "", "701234568"})

	require.Len(t, job.Results, 3)
	assert.Equal(t, 3, job.Attempted)
	assert.Equal(t, 2, job.Succeeded)
	assert.Equal(t, 1, job.Failed)

	assert.True(t, job.Results[0].Success)
	assert.False(t, job.Results[1].Success)
	assert.NotEmpty(t, job.Results[1].FailureReason)
	assert.True(t, job.Results[2].Success)
}

// TestTrackBatch_ResultsKeepInputOrder verifies results line up with input
// positions despite interleaved execution.
func TestTrackBatch_ResultsKeepInputOrder(t *testing.T) {
	strat := &mockStrategy{id: domain.StrategyDirect, fetch: func(ctx context.Context, sess *fingerprint.Session) ([]byte, error) {
		return usablePayload, nil
	}}
	svc := batchService(t, batchProfiles([]domain.Carrier{domain.CarrierEstes}, 5), strat, 8)

	numbers := []string{"701234567", "701234568", "701234569"}
	job := svc.TrackBatch(context.Background(), numbers)

	require.Len(t, job.Results, 3)
	for i, raw := range numbers {
		assert.Equal(t, domain.NewTrackingNumber(raw).Normalized, job.Results[i].TrackingNumber)
	}
}
