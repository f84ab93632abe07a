package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"ltl-tracker/internal/core/logger"
	"ltl-tracker/internal/features/tracking/classifier"
	"ltl-tracker/internal/features/tracking/domain"
	"ltl-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

const (
	defaultRequestDeadline = 60 * time.Second
	defaultAttemptPauseMax = 750 * time.Millisecond
)

// LadderOptions bound the escalation engine. Zero values fall back to
// defaults.
type LadderOptions struct {
	// RequestDeadline bounds the whole ladder for one tracking number.
	RequestDeadline time.Duration
	// AttemptPauseMax is the upper bound of the randomized pause between
	// attempts, so the carrier never sees a fixed-interval request pattern.
	AttemptPauseMax time.Duration
}

// Ladder executes a carrier's strategies strictly in order until one payload
// classifies as usable and a parser extracts a result, or the list runs out.
// One strategy's failure never prevents trying the rest.
type Ladder struct {
	strategies map[domain.StrategyID]ports.Strategy
	sessions   ports.SessionSource
	classifier *classifier.Classifier
	parsers    []ports.Parser
	opts       LadderOptions
	log        *zap.Logger
}

// NewLadder builds the escalation engine.
func NewLadder(
	strategies []ports.Strategy,
	sessions ports.SessionSource,
	cls *classifier.Classifier,
	parserChain []ports.Parser,
	opts LadderOptions,
) *Ladder {
	if opts.RequestDeadline <= 0 {
		opts.RequestDeadline = defaultRequestDeadline
	}
	if opts.AttemptPauseMax <= 0 {
		opts.AttemptPauseMax = defaultAttemptPauseMax
	}

	byID := make(map[domain.StrategyID]ports.Strategy, len(strategies))
	for _, s := range strategies {
		byID[s.ID()] = s
	}

	return &Ladder{
		strategies: byID,
		sessions:   sessions,
		classifier: cls,
		parsers:    parserChain,
		opts:       opts,
		log:        logger.Named("ladder"),
	}
}

// Run executes the ladder for one (carrier, tracking number) pair. It always
// returns a result: engine failures surface as Success=false, never as an
// error.
func (l *Ladder) Run(ctx context.Context, profile *domain.CarrierProfile, tn domain.TrackingNumber) *domain.TrackingResult {
	ctx, cancel := context.WithTimeout(ctx, l.opts.RequestDeadline)
	defer cancel()

	var (
		attempts    []domain.StrategyAttempt
		rotations   int
		sawScript   bool
		deadlineHit bool
	)

	for i, id := range profile.Strategies {
		if ctx.Err() != nil {
			// Forced exhaustion: strategies remain but the request
			// deadline cut the ladder short.
			deadlineHit = true
			break
		}

		strat, ok := l.strategies[id]
		if !ok {
			l.log.Warn("Unknown strategy in profile, skipping",
				zap.String("carrier", string(profile.Carrier)),
				zap.String("strategy", string(id)),
			)
			continue
		}

		attempt, ext := l.attempt(ctx, strat, profile, tn, &rotations, &sawScript)
		attempts = append(attempts, attempt)

		if ext != nil {
			l.log.Info("Tracking resolved",
				zap.String("carrier", string(profile.Carrier)),
				zap.String("tracking_number", tn.Normalized),
				zap.String("strategy", string(id)),
				zap.String("parser", string(ext.Parser)),
			)
			return normalize(tn, profile.Carrier, ext, id, attempts, rotations)
		}

		if i < len(profile.Strategies)-1 {
			l.pause(ctx)
		}
	}

	l.log.Info("Tracking exhausted",
		zap.String("carrier", string(profile.Carrier)),
		zap.String("tracking_number", tn.Normalized),
		zap.Int("attempts", len(attempts)),
		zap.Int("rotations", rotations),
	)
	return exhausted(tn, profile.Carrier, attempts, sawScript, deadlineHit)
}

// attempt runs a single strategy to its terminal per-attempt state: fetch,
// classify, parse. The returned extraction is non-nil only on success.
func (l *Ladder) attempt(
	ctx context.Context,
	strat ports.Strategy,
	profile *domain.CarrierProfile,
	tn domain.TrackingNumber,
	rotations *int,
	sawScript *bool,
) (domain.StrategyAttempt, *domain.Extraction) {
	attempt := domain.StrategyAttempt{
		Strategy:  strat.ID(),
		StartedAt: time.Now().UTC(),
	}

	sess, err := l.sessions.Acquire(profile.Carrier)
	if err != nil {
		attempt.EndedAt = time.Now().UTC()
		attempt.Outcome = domain.OutcomeNetworkError
		attempt.Err = err.Error()
		return attempt, nil
	}
	defer l.sessions.Release(profile.Carrier)

	attemptCtx, cancel := context.WithTimeout(ctx, strat.Timeout())
	payload, err := strat.Fetch(attemptCtx, sess, profile, tn)
	cancel()

	attempt.EndedAt = time.Now().UTC()
	attempt.PayloadBytes = len(payload)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			attempt.Outcome = domain.OutcomeTimeout
		} else {
			attempt.Outcome = domain.OutcomeNetworkError
		}
		attempt.Err = err.Error()
		l.log.Debug("Strategy attempt failed",
			zap.String("carrier", string(profile.Carrier)),
			zap.String("strategy", string(attempt.Strategy)),
			zap.String("outcome", string(attempt.Outcome)),
			zap.Error(err),
		)
		return attempt, nil
	}

	verdict := l.classifier.Classify(payload, profile)
	attempt.Verdict = verdict

	switch verdict {
	case domain.VerdictEmpty:
		attempt.Outcome = domain.OutcomeNoData
		return attempt, nil

	case domain.VerdictAntiBot:
		// Blocked: present a different identity before the next rung.
		attempt.Outcome = domain.OutcomeBlocked
		*rotations++
		l.sessions.Rotate(profile.Carrier)
		return attempt, nil

	case domain.VerdictScript:
		// Code masquerading as content. The tracking number appearing in a
		// script bundle is not a match.
		attempt.Outcome = domain.OutcomeNoData
		*sawScript = true
		return attempt, nil
	}

	for _, parser := range l.parsers {
		ext, ok := parser.TryExtract(payload, tn)
		if !ok {
			continue
		}
		attempt.Outcome = domain.OutcomeSuccess
		attempt.Parser = ext.Parser
		return attempt, ext
	}

	// Usable content but nothing extracted: a parse failure advances the
	// ladder the same way a network error does.
	attempt.Outcome = domain.OutcomeNoData
	return attempt, nil
}

// pause sleeps a randomized interval between attempts, honoring cancellation.
func (l *Ladder) pause(ctx context.Context) {
	jitter := time.Duration(rand.Int63n(int64(l.opts.AttemptPauseMax)))
	timer := time.NewTimer(jitter)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
