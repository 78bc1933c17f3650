package services

import (
	"errors"
	"math"
	"testing"

	"github.com/BenoitGuillaud/budapest-market/models"
)

func TestEvaluatePerfectPrediction(t *testing.T) {
	r, err := Evaluate([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.RMSE != 0 {
		t.Errorf("RMSE: got %g, want 0", r.RMSE)
	}
	if r.MAE != 0 {
		t.Errorf("MAE: got %g, want 0", r.MAE)
	}
	if r.R2 != 1 {
		t.Errorf("R²: got %g, want 1", r.R2)
	}
}

func TestEvaluateConstantOffset(t *testing.T) {
	r, err := Evaluate([]float64{10, 20}, []float64{15, 25})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if r.RMSE != 5 {
		t.Errorf("RMSE: got %g, want 5", r.RMSE)
	}
	if r.MAE != 5 {
		t.Errorf("MAE: got %g, want 5", r.MAE)
	}
	// SS_res = 50, SS_tot = 50.
	if r.R2 != 0 {
		t.Errorf("R²: got %g, want 0", r.R2)
	}
}

func TestEvaluateKnownR2(t *testing.T) {
	r, err := Evaluate([]float64{1, 2, 3}, []float64{1, 2, 4})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	// SS_res = 1, SS_tot = 2.
	if math.Abs(r.R2-0.5) > 1e-12 {
		t.Errorf("R²: got %g, want 0.5", r.R2)
	}
}

func TestEvaluateLengthMismatch(t *testing.T) {
	_, err := Evaluate([]float64{1, 2}, []float64{1})
	if !errors.Is(err, models.ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestEvaluateEmptyInput(t *testing.T) {
	_, err := Evaluate(nil, nil)
	if !errors.Is(err, models.ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestDiagnosticsSeries(t *testing.T) {
	s, err := Diagnostics([]float64{100, 200}, []float64{110, 190})
	if err != nil {
		t.Fatalf("Diagnostics failed: %v", err)
	}
	if len(s.PredictedVsObserved) != 2 || len(s.ResidualPctVsObserved) != 2 {
		t.Fatalf("series lengths: got %d/%d, want 2/2",
			len(s.PredictedVsObserved), len(s.ResidualPctVsObserved))
	}
	if p := s.PredictedVsObserved[0]; p.X != 100 || p.Y != 110 {
		t.Errorf("predicted-vs-observed[0]: got (%g,%g), want (100,110)", p.X, p.Y)
	}
	if p := s.ResidualPctVsObserved[0]; p.X != 100 || p.Y != 10 {
		t.Errorf("residual-pct[0]: got (%g,%g), want (100,10)", p.X, p.Y)
	}
	if p := s.ResidualPctVsObserved[1]; p.Y != -5 {
		t.Errorf("residual-pct[1]: got %g, want -5", p.Y)
	}
}
