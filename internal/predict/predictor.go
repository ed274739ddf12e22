// Package predict maps probability distributions to scoreline tips through
// a configurable policy table.
package predict

import (
	"fmt"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

// Probabilities closer than this count as a tie and resolve to draw. Wide
// enough that near-level bookmaker odds (gaps under a percentage point)
// land on the conservative draw instead of a coin-flip favourite.
const defaultDrawEpsilon = 0.01

// Scoreline is one goals pair of the policy table.
type Scoreline struct {
	Home int `yaml:"home"`
	Away int `yaml:"away"`
}

// Tier binds a winning-margin band to one scoreline per outcome class.
// MaxMargin is the exclusive upper bound of the band; 0 means unbounded
// (the final tier).
type Tier struct {
	MaxMargin float64   `yaml:"max_margin"`
	Home      Scoreline `yaml:"home_win"`
	Draw      Scoreline `yaml:"draw"`
	Away      Scoreline `yaml:"away_win"`
}

// Policy is the operator-tunable scoreline table. Tier boundaries and
// scorelines are configuration, not business rules baked into code.
type Policy struct {
	DrawEpsilon float64 `yaml:"draw_epsilon"`
	Tiers       []Tier  `yaml:"tiers"`
}

// DefaultPolicy returns the stock three-tier table: narrow results below a
// 0.10 margin, moderate up to 0.30, decisive above.
func DefaultPolicy() Policy {
	return Policy{
		DrawEpsilon: defaultDrawEpsilon,
		Tiers: []Tier{
			{MaxMargin: 0.10, Home: Scoreline{1, 0}, Draw: Scoreline{0, 0}, Away: Scoreline{0, 1}},
			{MaxMargin: 0.30, Home: Scoreline{2, 1}, Draw: Scoreline{1, 1}, Away: Scoreline{1, 2}},
			{Home: Scoreline{3, 1}, Draw: Scoreline{1, 1}, Away: Scoreline{1, 3}},
		},
	}
}

func (p Policy) Validate() error {
	if len(p.Tiers) == 0 {
		return fmt.Errorf("predictor policy needs at least one tier")
	}
	if p.DrawEpsilon < 0 {
		return fmt.Errorf("draw_epsilon must be non-negative, got %v", p.DrawEpsilon)
	}
	prev := 0.0
	for i, tier := range p.Tiers {
		last := i == len(p.Tiers)-1
		if !last && tier.MaxMargin <= prev {
			return fmt.Errorf("tier %d: max_margin %v must exceed previous bound %v", i, tier.MaxMargin, prev)
		}
		if last && tier.MaxMargin != 0 {
			return fmt.Errorf("tier %d: final tier must leave max_margin unset", i)
		}
		prev = tier.MaxMargin
		for _, s := range []Scoreline{tier.Home, tier.Draw, tier.Away} {
			if s.Home < 0 || s.Away < 0 {
				return fmt.Errorf("tier %d: negative goals in scoreline %d:%d", i, s.Home, s.Away)
			}
		}
		if tier.Home.Home <= tier.Home.Away {
			return fmt.Errorf("tier %d: home_win scoreline %d:%d is not a home win", i, tier.Home.Home, tier.Home.Away)
		}
		if tier.Draw.Home != tier.Draw.Away {
			return fmt.Errorf("tier %d: draw scoreline %d:%d is not a draw", i, tier.Draw.Home, tier.Draw.Away)
		}
		if tier.Away.Home >= tier.Away.Away {
			return fmt.Errorf("tier %d: away_win scoreline %d:%d is not an away win", i, tier.Away.Home, tier.Away.Away)
		}
	}
	return nil
}

// Predictor turns distributions into tips. It is stateless apart from the
// policy table, so identical distributions always yield identical tips.
type Predictor struct {
	policy Policy
}

func New(policy Policy) (*Predictor, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if policy.DrawEpsilon == 0 {
		policy.DrawEpsilon = defaultDrawEpsilon
	}
	return &Predictor{policy: policy}, nil
}

// Predict selects the most probable outcome class, with ties resolving to
// draw, and maps the winning margin through the tier table.
func (p *Predictor) Predict(matchID string, d models.Distribution) models.Tip {
	class, _ := d.Top(p.policy.DrawEpsilon)
	tier := p.tierFor(d.Margin())

	var s Scoreline
	switch class {
	case models.OutcomeHome:
		s = tier.Home
	case models.OutcomeAway:
		s = tier.Away
	default:
		s = tier.Draw
	}
	return models.Tip{MatchID: matchID, HomeGoals: s.Home, AwayGoals: s.Away}
}

func (p *Predictor) tierFor(margin float64) Tier {
	for i, tier := range p.policy.Tiers {
		if i == len(p.policy.Tiers)-1 || margin < tier.MaxMargin {
			return tier
		}
	}
	return p.policy.Tiers[len(p.policy.Tiers)-1]
}
