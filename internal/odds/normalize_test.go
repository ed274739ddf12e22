package odds

import (
	"errors"
	"math"
	"testing"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

func TestNormalizeSumsToOne(t *testing.T) {
	triples := []models.OddsTriple{
		{HomeWin: 2.00, Draw: 3.40, AwayWin: 4.00},
		{HomeWin: 1.05, Draw: 12.0, AwayWin: 34.0},
		{HomeWin: 3.00, Draw: 3.05, AwayWin: 3.10},
		{HomeWin: 1.001, Draw: 1.001, AwayWin: 1.001},
	}
	for _, o := range triples {
		d, err := Normalize(o)
		if err != nil {
			t.Fatalf("Normalize(%v): %v", o, err)
		}
		if d.Home < 0 || d.Draw < 0 || d.Away < 0 {
			t.Errorf("Normalize(%v): negative component %+v", o, d)
		}
		sum := d.Home + d.Draw + d.Away
		if math.Abs(sum-1.0) > 1e-12 {
			t.Errorf("Normalize(%v): sum = %v, want 1", o, sum)
		}
	}
}

func TestNormalizeFavorsShortestOdds(t *testing.T) {
	d, err := Normalize(models.OddsTriple{HomeWin: 2.00, Draw: 3.40, AwayWin: 4.00})
	if err != nil {
		t.Fatal(err)
	}
	if d.Home <= d.Draw || d.Home <= d.Away {
		t.Errorf("home win should be the largest component, got %+v", d)
	}
}

func TestNormalizeSymmetry(t *testing.T) {
	d1, err := Normalize(models.OddsTriple{HomeWin: 1.80, Draw: 3.60, AwayWin: 4.50})
	if err != nil {
		t.Fatal(err)
	}
	// Swap home and away; the distribution must swap accordingly.
	d2, err := Normalize(models.OddsTriple{HomeWin: 4.50, Draw: 3.60, AwayWin: 1.80})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(d1.Home-d2.Away) > 1e-12 || math.Abs(d1.Away-d2.Home) > 1e-12 || math.Abs(d1.Draw-d2.Draw) > 1e-12 {
		t.Errorf("permuting odds did not permute distribution: %+v vs %+v", d1, d2)
	}
}

func TestNormalizeMalformed(t *testing.T) {
	bad := []models.OddsTriple{
		{HomeWin: 0.0, Draw: 3.40, AwayWin: 4.00},
		{HomeWin: 2.00, Draw: -1.5, AwayWin: 4.00},
		{HomeWin: 2.00, Draw: 3.40, AwayWin: 1.0},
		{HomeWin: math.NaN(), Draw: 3.40, AwayWin: 4.00},
		{HomeWin: math.Inf(1), Draw: 3.40, AwayWin: 4.00},
		{},
	}
	for _, o := range bad {
		_, err := Normalize(o)
		if err == nil {
			t.Errorf("Normalize(%v): expected error", o)
			continue
		}
		var malformed *MalformedOddsError
		if !errors.As(err, &malformed) {
			t.Errorf("Normalize(%v): error %v is not MalformedOddsError", o, err)
		}
	}
}
