package models

import (
	"fmt"
	"math"
)

// OutcomeClass is one of the three 1X2 outcomes.
type OutcomeClass string

const (
	OutcomeHome OutcomeClass = "home"
	OutcomeDraw OutcomeClass = "draw"
	OutcomeAway OutcomeClass = "away"
)

// Distribution is a normalized probability distribution over the 1X2
// outcomes. Components are non-negative and sum to 1. Derived from an
// OddsTriple, never persisted.
type Distribution struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Top returns the most probable outcome class and its probability.
// Ties within eps resolve to draw, including a home/away dead heat.
func (d Distribution) Top(eps float64) (OutcomeClass, float64) {
	top, p := OutcomeHome, d.Home
	if d.Away > p {
		top, p = OutcomeAway, d.Away
	}
	if d.Draw >= p-eps {
		return OutcomeDraw, d.Draw
	}
	if math.Abs(d.Home-d.Away) <= eps {
		return OutcomeDraw, d.Draw
	}
	return top, p
}

// Margin returns the gap between the highest and second-highest component.
func (d Distribution) Margin() float64 {
	vals := [3]float64{d.Home, d.Draw, d.Away}
	first, second := 0.0, 0.0
	for _, v := range vals {
		if v > first {
			first, second = v, first
		} else if v > second {
			second = v
		}
	}
	return first - second
}

// Tip is a predicted scoreline for one match.
type Tip struct {
	MatchID   string `json:"match_id"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
}

func (t Tip) Score() string {
	return fmt.Sprintf("%d:%d", t.HomeGoals, t.AwayGoals)
}

// Class reports which 1X2 outcome the scoreline predicts.
func (t Tip) Class() OutcomeClass {
	switch {
	case t.HomeGoals > t.AwayGoals:
		return OutcomeHome
	case t.HomeGoals < t.AwayGoals:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}
