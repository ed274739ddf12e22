// Package odds converts raw bookmaker odds into fair probability
// distributions by stripping the bookmaker margin (overround).
package odds

import (
	"fmt"
	"math"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

// MalformedOddsError marks an odds triple that cannot be normalized.
// The match carrying it is excluded from prediction for the cycle; odds
// will not self-correct within one cycle, so it is never retried.
type MalformedOddsError struct {
	Odds models.OddsTriple
}

func (e *MalformedOddsError) Error() string {
	return fmt.Sprintf("malformed odds triple %.2f/%.2f/%.2f", e.Odds.HomeWin, e.Odds.Draw, e.Odds.AwayWin)
}

// Normalize converts a decimal odds triple into a probability distribution
// over home/draw/away. Implied probability per outcome is 1/odds; the three
// implied probabilities sum to more than 1 because of the bookmaker margin,
// so each is divided by the sum to yield a distribution summing to exactly 1.
func Normalize(o models.OddsTriple) (models.Distribution, error) {
	if !valid(o.HomeWin) || !valid(o.Draw) || !valid(o.AwayWin) {
		return models.Distribution{}, &MalformedOddsError{Odds: o}
	}

	home := 1.0 / o.HomeWin
	draw := 1.0 / o.Draw
	away := 1.0 / o.AwayWin
	sum := home + draw + away

	return models.Distribution{
		Home: home / sum,
		Draw: draw / sum,
		Away: away / sum,
	}, nil
}

func valid(v float64) bool {
	return v > 1.0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
