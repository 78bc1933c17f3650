package optimizer

import (
	"fmt"

	"github.com/BenoitGuillaud/budapest-market/model"
	"github.com/BenoitGuillaud/budapest-market/models"
)

// BindFunc turns a validated candidate into a derived row the surrogate
// models can score.
type BindFunc func(c Candidate) (*models.DerivedRow, error)

// Objective wraps the two fitted surrogate models as a single pure function
// from a candidate flat configuration to its expected annual rental yield,
// in percent. It holds no mutable state, so an optimizer may evaluate
// candidates concurrently.
type Objective struct {
	price model.Model
	rent  model.Model
	space ParameterSpace
	bind  BindFunc
}

// NewObjective builds the surrogate objective from a price model (million
// HUF), an annual-rent model (million HUF per year), the declared parameter
// space and a candidate binder.
func NewObjective(price, rent model.Model, space ParameterSpace, bind BindFunc) *Objective {
	return &Objective{price: price, rent: rent, space: space, bind: bind}
}

// Space returns the declared parameter space.
func (o *Objective) Space() ParameterSpace { return o.space }

// Evaluate validates the candidate against the declared space before either
// model is invoked, then returns predicted_rent / predicted_price * 100.
func (o *Objective) Evaluate(c Candidate) (float64, error) {
	if err := o.space.Validate(c); err != nil {
		return 0, err
	}

	row, err := o.bind(c)
	if err != nil {
		return 0, fmt.Errorf("objective: bind candidate: %w", err)
	}

	price, err := o.predictOne(o.price, row)
	if err != nil {
		return 0, fmt.Errorf("objective: price model: %w", err)
	}
	rent, err := o.predictOne(o.rent, row)
	if err != nil {
		return 0, fmt.Errorf("objective: rent model: %w", err)
	}

	if price <= 0 {
		return 0, &models.DomainError{
			Param: "price", Value: price,
			Reason: "surrogate predicts a non-positive price",
		}
	}

	return rent / price * 100, nil
}

func (o *Objective) predictOne(m model.Model, row *models.DerivedRow) (float64, error) {
	preds, err := m.Predict([]*models.DerivedRow{row})
	if err != nil {
		return 0, err
	}
	if len(preds) != 1 {
		return 0, fmt.Errorf("expected 1 prediction, got %d", len(preds))
	}
	return preds[0], nil
}
