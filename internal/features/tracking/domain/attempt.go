package domain

import "time"

// StrategyID names one retrieval strategy in the escalation ladder.
type StrategyID string

const (
	// StrategyDirect is a plain GET against the carrier's tracking page.
	StrategyDirect StrategyID = "direct"
	// StrategyForm discovers hidden form fields and submits the search form.
	StrategyForm StrategyID = "form"
	// StrategyAPI calls the carrier's reverse-engineered JSON endpoint.
	StrategyAPI StrategyID = "api"
	// StrategyAntiBot fetches through the anti-bot bypass transport.
	StrategyAntiBot StrategyID = "antibot"
	// StrategyMirror queries third-party tracking aggregators.
	StrategyMirror StrategyID = "mirror"
	// StrategyBrowser renders the page in a headless browser.
	StrategyBrowser StrategyID = "browser"
)

// Verdict is the content classifier's label for a raw payload.
type Verdict string

const (
	// VerdictUsable means the payload looks like a real tracking page.
	VerdictUsable Verdict = "USABLE_CONTENT"
	// VerdictAntiBot means the payload is a block/challenge page.
	VerdictAntiBot Verdict = "ANTI_BOT_BLOCK"
	// VerdictScript means the payload is code masquerading as content.
	VerdictScript Verdict = "SCRIPT_NOT_DATA"
	// VerdictEmpty means the payload is too short to be a tracking page.
	VerdictEmpty Verdict = "EMPTY"
)

// AttemptOutcome is the terminal state of a single strategy execution.
type AttemptOutcome string

const (
	OutcomeSuccess      AttemptOutcome = "SUCCESS"
	OutcomeNoData       AttemptOutcome = "NO_DATA"
	OutcomeBlocked      AttemptOutcome = "BLOCKED"
	OutcomeNetworkError AttemptOutcome = "NETWORK_ERROR"
	OutcomeTimeout      AttemptOutcome = "TIMEOUT"
)

// StrategyAttempt records one strategy execution for diagnostics and backoff
// decisions. Attempts live only for the enclosing request and are never
// persisted.
type StrategyAttempt struct {
	Strategy     StrategyID     `json:"strategy"`
	StartedAt    time.Time      `json:"started_at"`
	EndedAt      time.Time      `json:"ended_at"`
	PayloadBytes int            `json:"payload_bytes"`
	Verdict      Verdict        `json:"verdict,omitempty"`
	Parser       ParserID       `json:"parser,omitempty"`
	Outcome      AttemptOutcome `json:"outcome"`
	Err          string         `json:"error,omitempty"`
}

// Duration returns how long the attempt took.
func (a StrategyAttempt) Duration() time.Duration {
	return a.EndedAt.Sub(a.StartedAt)
}
