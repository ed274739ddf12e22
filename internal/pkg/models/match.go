package models

import (
	"fmt"
	"time"
)

// TippedState describes whether the site already holds a tip for a match.
type TippedState string

const (
	TippedStateOpen   TippedState = "open"
	TippedStateTipped TippedState = "tipped"
)

// OddsTriple holds raw decimal bookmaker odds for the 1X2 market as shown
// on the tipping page. Values must each be > 1.0 to be usable; validation
// happens in the odds package, not here.
type OddsTriple struct {
	HomeWin float64 `json:"home_win"`
	Draw    float64 `json:"draw"`
	AwayWin float64 `json:"away_win"`
}

// Match is an immutable per-cycle snapshot of one game row as observed on
// the site at fetch time.
type Match struct {
	ID          string      `json:"id"` // site-assigned form identifier
	Competition string      `json:"competition"`
	HomeTeam    string      `json:"home_team"`
	AwayTeam    string      `json:"away_team"`
	Kickoff     time.Time   `json:"kickoff"` // UTC
	Odds        OddsTriple  `json:"odds"`
	Tipped      TippedState `json:"tipped"`

	// TippedScore holds the scoreline currently on the site when
	// Tipped == TippedStateTipped; used for submission verification.
	TippedScore *Tip `json:"tipped_score,omitempty"`
}

func (m Match) Name() string {
	return fmt.Sprintf("%s vs %s", m.HomeTeam, m.AwayTeam)
}
