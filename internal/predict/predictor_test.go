package predict

import (
	"testing"

	"github.com/mwirth/tippbot/internal/odds"
	"github.com/mwirth/tippbot/internal/pkg/models"
)

func mustPredictor(t *testing.T) *Predictor {
	t.Helper()
	p, err := New(DefaultPolicy())
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPredictDeterministic(t *testing.T) {
	p := mustPredictor(t)
	d := models.Distribution{Home: 0.55, Draw: 0.25, Away: 0.20}
	first := p.Predict("m1", d)
	for i := 0; i < 10; i++ {
		if got := p.Predict("m1", d); got != first {
			t.Fatalf("Predict is not deterministic: %v vs %v", got, first)
		}
	}
}

func TestPredictTiers(t *testing.T) {
	p := mustPredictor(t)
	cases := []struct {
		name string
		d    models.Distribution
		want models.Tip
	}{
		{"narrow home", models.Distribution{Home: 0.40, Draw: 0.35, Away: 0.25}, models.Tip{MatchID: "m", HomeGoals: 1, AwayGoals: 0}},
		{"moderate home", models.Distribution{Home: 0.50, Draw: 0.30, Away: 0.20}, models.Tip{MatchID: "m", HomeGoals: 2, AwayGoals: 1}},
		{"decisive home", models.Distribution{Home: 0.65, Draw: 0.20, Away: 0.15}, models.Tip{MatchID: "m", HomeGoals: 3, AwayGoals: 1}},
		{"narrow away", models.Distribution{Home: 0.25, Draw: 0.35, Away: 0.40}, models.Tip{MatchID: "m", HomeGoals: 0, AwayGoals: 1}},
		{"moderate away", models.Distribution{Home: 0.20, Draw: 0.28, Away: 0.52}, models.Tip{MatchID: "m", HomeGoals: 1, AwayGoals: 2}},
		{"decisive away", models.Distribution{Home: 0.10, Draw: 0.20, Away: 0.70}, models.Tip{MatchID: "m", HomeGoals: 1, AwayGoals: 3}},
		{"clear draw", models.Distribution{Home: 0.28, Draw: 0.44, Away: 0.28}, models.Tip{MatchID: "m", HomeGoals: 1, AwayGoals: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Predict("m", tc.d); got != tc.want {
				t.Errorf("Predict(%+v) = %v, want %v", tc.d, got, tc.want)
			}
		})
	}
}

func TestPredictTieResolvesToDraw(t *testing.T) {
	p := mustPredictor(t)
	d := models.Distribution{Home: 1.0 / 3, Draw: 1.0 / 3, Away: 1.0 / 3}
	tip := p.Predict("m", d)
	if tip.Class() != models.OutcomeDraw {
		t.Errorf("exact tie should predict a draw, got %s", tip.Score())
	}
}

func TestPredictHomeAwayDeadHeat(t *testing.T) {
	p := mustPredictor(t)
	// Two equally likely winners and an unlikely draw is still a tie at
	// the top and resolves conservatively.
	tip := p.Predict("m", models.Distribution{Home: 0.45, Draw: 0.10, Away: 0.45})
	if tip.Class() != models.OutcomeDraw {
		t.Errorf("home/away dead heat should predict a draw, got %s", tip.Score())
	}
}

func TestPredictFromBookmakerOdds(t *testing.T) {
	p := mustPredictor(t)

	// Clear home favourite.
	d, err := odds.Normalize(models.OddsTriple{HomeWin: 2.00, Draw: 3.40, AwayWin: 4.00})
	if err != nil {
		t.Fatal(err)
	}
	tip := p.Predict("m", d)
	if tip.Class() != models.OutcomeHome {
		t.Errorf("odds 2.00/3.40/4.00 should predict a home win, got %s", tip.Score())
	}

	// Near-equal odds, implied probabilities almost level.
	d, err = odds.Normalize(models.OddsTriple{HomeWin: 3.00, Draw: 3.05, AwayWin: 3.10})
	if err != nil {
		t.Fatal(err)
	}
	tip = p.Predict("m", d)
	if tip.Class() != models.OutcomeDraw {
		t.Errorf("near-equal odds should predict a draw, got %s", tip.Score())
	}
}

func TestPolicyValidate(t *testing.T) {
	bad := []Policy{
		{},
		{Tiers: []Tier{{MaxMargin: 0.2, Home: Scoreline{1, 1}, Draw: Scoreline{1, 1}, Away: Scoreline{0, 1}}, {Home: Scoreline{2, 0}, Draw: Scoreline{0, 0}, Away: Scoreline{0, 2}}}},
		{Tiers: []Tier{{MaxMargin: 0.3, Home: Scoreline{1, 0}, Draw: Scoreline{0, 0}, Away: Scoreline{0, 1}}, {MaxMargin: 0.2, Home: Scoreline{2, 0}, Draw: Scoreline{0, 0}, Away: Scoreline{0, 2}}, {Home: Scoreline{3, 0}, Draw: Scoreline{0, 0}, Away: Scoreline{0, 3}}}},
		{DrawEpsilon: -1, Tiers: DefaultPolicy().Tiers},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("policy %d: expected validation error", i)
		}
	}
	if err := DefaultPolicy().Validate(); err != nil {
		t.Errorf("default policy should validate: %v", err)
	}
}
