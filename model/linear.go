package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/BenoitGuillaud/budapest-market/models"
)

var categoricalSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(models.CategoricalFields))
	for _, f := range models.CategoricalFields {
		s[f] = struct{}{}
	}
	return s
}()

// column is one encoded design-matrix column: a numeric field, or one
// indicator of a categorical field's level.
type column struct {
	field string
	level string // "" for numeric columns
}

// LinearModel is an ordinary-least-squares fit over the table's projected
// fields. Categorical fields are one-hot encoded against the levels the
// training table's pruned domains declare, first level as baseline; a level
// unseen in training contributes the baseline at prediction time. Missing
// numeric values contribute zero.
type LinearModel struct {
	outcome string
	columns []column
	coef    []float64 // intercept first, then one per column
}

// TrainLinear fits a LinearModel; it satisfies TrainFunc.
func TrainLinear(table *models.FeatureTable, outcome string) (Model, error) {
	columns, err := encodeColumns(table, outcome)
	if err != nil {
		return nil, err
	}

	n := len(table.Rows)
	p := len(columns) + 1
	if n < p {
		return nil, fmt.Errorf("model: %d rows cannot identify %d coefficients", n, p)
	}

	x := mat.NewDense(n, p, nil)
	y := mat.NewVecDense(n, nil)
	for i, row := range table.Rows {
		v, ok := row.Numeric(outcome)
		if !ok {
			return nil, fmt.Errorf("model: row %s has no outcome %q", row.ID, outcome)
		}
		y.SetVec(i, v)
		x.Set(i, 0, 1)
		for j, col := range columns {
			x.Set(i, j+1, col.value(row))
		}
	}

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, fmt.Errorf("model: least squares solve: %w", err)
	}

	coef := make([]float64, p)
	for i := range coef {
		coef[i] = beta.AtVec(i)
	}
	return &LinearModel{outcome: outcome, columns: columns, coef: coef}, nil
}

// Predict implements Model.
func (m *LinearModel) Predict(rows []*models.DerivedRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		v := m.coef[0]
		for j, col := range m.columns {
			v += m.coef[j+1] * col.value(row)
		}
		out[i] = v
	}
	return out, nil
}

// Outcome returns the field the model was fitted on.
func (m *LinearModel) Outcome() string { return m.outcome }

func encodeColumns(table *models.FeatureTable, outcome string) ([]column, error) {
	var columns []column
	for _, field := range table.Fields {
		if field == outcome {
			continue
		}
		if _, cat := categoricalSet[field]; !cat {
			columns = append(columns, column{field: field})
			continue
		}
		levels := table.Domains[field]
		if len(levels) == 0 {
			return nil, fmt.Errorf("model: categorical field %q has an empty domain", field)
		}
		// First level is the baseline.
		for _, level := range levels[1:] {
			columns = append(columns, column{field: field, level: level})
		}
	}
	return columns, nil
}

func (c column) value(row *models.DerivedRow) float64 {
	if c.level == "" {
		v, _ := row.Numeric(c.field)
		return v
	}
	if v, ok := row.Categorical(c.field); ok && v == c.level {
		return 1
	}
	return 0
}
