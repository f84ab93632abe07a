// Package fingerprint owns every Session in the system. It hands out pooled,
// TTL-bounded browsing identities per carrier and rotates them when a carrier
// starts blocking.
package fingerprint

import (
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"ltl-tracker/internal/core/logger"
	"ltl-tracker/internal/features/tracking/domain"

	"go.uber.org/zap"
)

const (
	defaultTTL      = 5 * time.Minute
	defaultPoolSize = 3
)

// Options bound the session pool. Zero values fall back to defaults.
type Options struct {
	// TTL is how long a session stays valid before transparent replacement.
	TTL time.Duration
	// PoolSize caps sessions per carrier. The cap is deliberate: an
	// unbounded pool burns through fingerprints and looks like a botnet.
	PoolSize int
}

// Manager produces and caches sessions per carrier. It is the only
// lock-guarded shared resource in the pipeline.
type Manager struct {
	mu    sync.Mutex
	pools map[domain.Carrier]*carrierPool
	opts  Options
	log   *zap.Logger
}

type carrierPool struct {
	sessions []*Session
	next     int
	// generation advances on every Rotate so replacement sessions sample
	// a different catalog entry.
	generation int
}

// NewManager builds a Manager with the given bounds.
func NewManager(opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.PoolSize <= 0 {
		opts.PoolSize = defaultPoolSize
	}
	return &Manager{
		pools: make(map[domain.Carrier]*carrierPool),
		opts:  opts,
		log:   logger.Get(),
	}
}

// Acquire returns a live session for the carrier, creating or replacing one
// as needed. Within the TTL the same sessions are reused so cookies and
// tokens set by one strategy remain visible to the next.
func (m *Manager) Acquire(carrier domain.Carrier) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pool := m.pools[carrier]
	if pool == nil {
		pool = &carrierPool{}
		m.pools[carrier] = pool
	}

	live := pool.sessions[:0]
	for _, s := range pool.sessions {
		if !s.Expired(m.opts.TTL) {
			live = append(live, s)
		}
	}
	pool.sessions = live

	if len(pool.sessions) < m.opts.PoolSize {
		fp := m.synthesize(carrier, pool.generation, len(pool.sessions))
		sess, err := newSession(carrier, fp)
		if err != nil {
			return nil, err
		}
		pool.sessions = append(pool.sessions, sess)
		m.log.Debug("Session created",
			zap.String("carrier", string(carrier)),
			zap.String("fingerprint", fp.ID),
		)
		return sess, nil
	}

	if pool.next >= len(pool.sessions) {
		pool.next = 0
	}
	sess := pool.sessions[pool.next]
	pool.next++
	return sess, nil
}

// Release is bookkeeping only. Sessions are pooled, not torn down per
// attempt.
func (m *Manager) Release(carrier domain.Carrier) {}

// Rotate discards the carrier's sessions and advances the fingerprint
// generation, so the next Acquire presents a different identity. Called when
// the classifier keeps reporting blocks.
func (m *Manager) Rotate(carrier domain.Carrier) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pool := m.pools[carrier]
	if pool == nil {
		pool = &carrierPool{}
		m.pools[carrier] = pool
	}
	pool.generation++
	pool.sessions = nil
	pool.next = 0

	m.log.Info("Fingerprint rotated",
		zap.String("carrier", string(carrier)),
		zap.Int("generation", pool.generation),
	)
}

// Shutdown drops every pooled session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pools = make(map[domain.Carrier]*carrierPool)
}

// synthesize deterministically samples the device catalog so one carrier
// presents one consistent identity per generation.
func (m *Manager) synthesize(carrier domain.Carrier, generation, slot int) Fingerprint {
	h := fnv.New32a()
	h.Write([]byte(carrier))
	idx := (int(h.Sum32()) + generation + slot) % len(catalog)
	if idx < 0 {
		idx = -idx
	}
	dev := catalog[idx]

	return Fingerprint{
		ID:             fmt.Sprintf("%s-g%d-s%d", dev.Name, generation, slot),
		UserAgent:      dev.userAgent(),
		Platform:       dev.Platform,
		Mobile:         dev.Mobile,
		Engine:         dev.Engine,
		TLSProfile:     dev.TLSProfile,
		AcceptLanguage: dev.AcceptLanguage,
	}
}
