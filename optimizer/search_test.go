package optimizer

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/BenoitGuillaud/budapest-market/models"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

// yieldByArea makes larger flats strictly better, so the search outcome is
// easy to reason about.
func yieldModels() (price, rent *stubModel) {
	price = constModel(50)
	rent = &stubModel{fn: func(r *models.DerivedRow) float64 { return r.Area / 30 }}
	return price, rent
}

func TestSearchFindsBestWithinBudget(t *testing.T) {
	price, rent := yieldModels()
	obj := NewObjective(price, rent, testSpace(), testBind)
	search := NewRandomSearch(100, 1, 4, testLogger())

	result, err := search.Optimize(obj)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if result.Evaluated+result.Rejected != 100 {
		t.Errorf("budget: evaluated %d + rejected %d != 100", result.Evaluated, result.Rejected)
	}
	area := result.Best["area"].(float64)
	if area < 30 || area > 150 {
		t.Errorf("best area %g outside the declared interval", area)
	}
	// With 100 uniform draws on [30,150] the best draw is far above the
	// midpoint; anything below it would mean the search ignored scores.
	if area < 100 {
		t.Errorf("best area %g: the search did not maximize the objective", area)
	}
}

func TestSearchIsDeterministicForFixedSeed(t *testing.T) {
	price, rent := yieldModels()
	obj := NewObjective(price, rent, testSpace(), testBind)

	first, err := NewRandomSearch(50, 9, 4, testLogger()).Optimize(obj)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	second, err := NewRandomSearch(50, 9, 4, testLogger()).Optimize(obj)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if first.Score != second.Score {
		t.Errorf("scores differ between identical runs: %g vs %g", first.Score, second.Score)
	}
	for _, p := range []string{"area", "district", "lift"} {
		if first.Best[p] != second.Best[p] {
			t.Errorf("best %s differs between identical runs: %v vs %v",
				p, first.Best[p], second.Best[p])
		}
	}
}

func TestSearchSkipsRejectedCandidates(t *testing.T) {
	// The price surrogate goes non-positive for small flats, so a good
	// share of the uniform draws is rejected by the objective's domain
	// guard. Rejections are counted, never fatal.
	price := &stubModel{fn: func(r *models.DerivedRow) float64 { return r.Area - 90 }}
	rent := constModel(2.4)
	obj := NewObjective(price, rent, testSpace(), testBind)

	search := NewRandomSearch(200, 3, 4, testLogger())
	result, err := search.Optimize(obj)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if result.Rejected == 0 {
		t.Errorf("expected some rejected candidates")
	}
	if result.Evaluated+result.Rejected != 200 {
		t.Errorf("budget: evaluated %d + rejected %d != 200", result.Evaluated, result.Rejected)
	}
	if result.Best["area"].(float64) <= 90 {
		t.Errorf("best area %g cannot have a positive predicted price", result.Best["area"].(float64))
	}
}

func TestSearchRejectsZeroBudget(t *testing.T) {
	price, rent := yieldModels()
	obj := NewObjective(price, rent, testSpace(), testBind)
	if _, err := NewRandomSearch(0, 1, 1, testLogger()).Optimize(obj); err == nil {
		t.Errorf("expected an error for zero budget")
	}
}
