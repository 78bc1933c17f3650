// Package model defines the predictive-model collaborator contract the rest
// of the pipeline depends on. Everything downstream treats a fitted model as
// an opaque capability: rows in, numeric predictions out. Which algorithm
// backs it is deliberately not this package's concern; TrainLinear is the
// default implementation so the binary runs end-to-end.
package model

import "github.com/BenoitGuillaud/budapest-market/models"

// Model is a fitted predictive model.
type Model interface {
	// Predict returns one numeric prediction per input row, in order.
	Predict(rows []*models.DerivedRow) ([]float64, error)
}

// TrainFunc trains a model on a feature table's rows, using the table's
// projected fields as predictors for the named outcome.
type TrainFunc func(table *models.FeatureTable, outcome string) (Model, error)
