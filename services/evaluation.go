package services

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/BenoitGuillaud/budapest-market/models"
)

// Evaluate computes RMSE, MAE and R² from parallel observed/predicted
// vectors. Missing values get no special handling; the caller pre-filters.
func Evaluate(observed, predicted []float64) (*models.EvaluationResult, error) {
	if len(observed) == 0 || len(predicted) == 0 {
		return nil, models.ErrEmptyInput
	}
	if len(observed) != len(predicted) {
		return nil, models.ErrLengthMismatch
	}

	n := float64(len(observed))
	mean := stat.Mean(observed, nil)

	var sqErr, absErr, ssTot float64
	for i := range observed {
		res := predicted[i] - observed[i]
		sqErr += res * res
		absErr += math.Abs(res)
		d := observed[i] - mean
		ssTot += d * d
	}

	r2 := math.NaN()
	if ssTot > 0 {
		r2 = 1 - sqErr/ssTot
	} else if sqErr == 0 {
		// A constant observed vector predicted exactly.
		r2 = 1
	}

	return &models.EvaluationResult{
		RMSE: math.Sqrt(sqErr / n),
		MAE:  absErr / n,
		R2:   r2,
	}, nil
}

// Diagnostics emits the two scatter series an external plot sink renders:
// predicted vs observed and residual percentage vs observed. Pure data, no
// owned state.
func Diagnostics(observed, predicted []float64) (*models.DiagnosticSeries, error) {
	if len(observed) == 0 || len(predicted) == 0 {
		return nil, models.ErrEmptyInput
	}
	if len(observed) != len(predicted) {
		return nil, models.ErrLengthMismatch
	}

	series := &models.DiagnosticSeries{
		PredictedVsObserved:   make([]models.Point, len(observed)),
		ResidualPctVsObserved: make([]models.Point, len(observed)),
	}
	for i := range observed {
		series.PredictedVsObserved[i] = models.Point{X: observed[i], Y: predicted[i]}
		pct := math.NaN()
		if observed[i] != 0 {
			pct = (predicted[i] - observed[i]) / observed[i] * 100
		}
		series.ResidualPctVsObserved[i] = models.Point{X: observed[i], Y: pct}
	}
	return series, nil
}
