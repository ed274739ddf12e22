// Package eligibility decides which fetched matches are due for tipping in
// the current cycle.
package eligibility

import (
	"time"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

// Rejection pairs a match with the reason it was not selected. Rejections
// are reported, never silently dropped.
type Rejection struct {
	Match  models.Match
	Reason models.MatchOutcome
}

// Filter selects matches whose kickoff lies inside (now, now+leadTime] and
// that the site still reports as open. Everything else comes back as a
// rejection with a specific reason: already started, already tipped, or
// not yet inside the lead-time window. With overwriteTips set, tipped
// matches still inside the window stay eligible and their tips are
// resubmitted; started matches remain excluded regardless.
func Filter(matches []models.Match, now time.Time, leadTime time.Duration, overwriteTips bool) ([]models.Match, []Rejection) {
	var eligible []models.Match
	var rejected []Rejection

	for _, m := range matches {
		switch {
		case !m.Kickoff.After(now):
			rejected = append(rejected, Rejection{Match: m, Reason: models.OutcomeStarted})
		case m.Tipped == models.TippedStateTipped && !overwriteTips:
			rejected = append(rejected, Rejection{Match: m, Reason: models.OutcomeAlreadyTipped})
		case m.Kickoff.Sub(now) > leadTime:
			rejected = append(rejected, Rejection{Match: m, Reason: models.OutcomeNotDue})
		default:
			eligible = append(eligible, m)
		}
	}
	return eligible, rejected
}
