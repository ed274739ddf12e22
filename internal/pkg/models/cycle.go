package models

import "time"

// MatchOutcome classifies what happened to one match during a cycle.
type MatchOutcome string

const (
	OutcomeSubmitted     MatchOutcome = "submitted"
	OutcomeAlreadyTipped MatchOutcome = "skipped-already-tipped"
	OutcomeNotDue        MatchOutcome = "skipped-not-due"
	OutcomeStarted       MatchOutcome = "skipped-started"
	OutcomeMalformed     MatchOutcome = "skipped-malformed"
	OutcomeFailed        MatchOutcome = "failed"
)

// MatchResult is the per-match entry of a CycleResult.
type MatchResult struct {
	Match   Match        `json:"match"`
	Outcome MatchOutcome `json:"outcome"`
	Tip     *Tip         `json:"tip,omitempty"`   // set when a tip was submitted
	Error   string       `json:"error,omitempty"` // set when Outcome == failed
}

// CycleResult is the outcome of one scheduler pass. It exists only to feed
// notifications and logging and is discarded when the cycle ends.
type CycleResult struct {
	CycleID     string        `json:"cycle_id"`
	Competition string        `json:"competition"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Matches     []MatchResult `json:"matches"`

	// AbortError is set when the cycle was cut short (auth or fetch
	// failure). Matches not reached before the abort are absent.
	AbortError string `json:"abort_error,omitempty"`
}

func (r *CycleResult) Add(m Match, outcome MatchOutcome) {
	r.Matches = append(r.Matches, MatchResult{Match: m, Outcome: outcome})
}

func (r *CycleResult) AddSubmitted(m Match, tip Tip) {
	r.Matches = append(r.Matches, MatchResult{Match: m, Outcome: OutcomeSubmitted, Tip: &tip})
}

func (r *CycleResult) AddFailed(m Match, err error) {
	res := MatchResult{Match: m, Outcome: OutcomeFailed}
	if err != nil {
		res.Error = err.Error()
	}
	r.Matches = append(r.Matches, res)
}

// Count returns the number of matches that ended with the given outcome.
func (r *CycleResult) Count(outcome MatchOutcome) int {
	n := 0
	for _, m := range r.Matches {
		if m.Outcome == outcome {
			n++
		}
	}
	return n
}

func (r *CycleResult) Aborted() bool {
	return r.AbortError != ""
}
