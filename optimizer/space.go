package optimizer

import (
	"fmt"
	"sort"

	"github.com/BenoitGuillaud/budapest-market/models"
)

// Interval is a closed continuous range.
type Interval struct {
	Min float64
	Max float64
}

// ParameterSpace declares the optimizer's input dimensions: continuous
// closed intervals and discrete value sets.
type ParameterSpace struct {
	Continuous map[string]Interval
	Discrete   map[string][]string
}

// Candidate is one design point: float64 for continuous parameters, string
// for discrete ones.
type Candidate map[string]any

// Validate checks a candidate against the declared space. Any missing,
// extra, out-of-interval or out-of-set parameter is a *models.DomainError.
func (s ParameterSpace) Validate(c Candidate) error {
	for name, iv := range s.Continuous {
		raw, ok := c[name]
		if !ok {
			return &models.DomainError{Param: name, Reason: "missing continuous parameter"}
		}
		v, ok := raw.(float64)
		if !ok {
			return &models.DomainError{Param: name, Value: raw, Reason: "continuous parameter must be a float64"}
		}
		if v < iv.Min || v > iv.Max {
			return &models.DomainError{
				Param: name, Value: v,
				Reason: fmt.Sprintf("outside interval [%g, %g]", iv.Min, iv.Max),
			}
		}
	}

	for name, set := range s.Discrete {
		raw, ok := c[name]
		if !ok {
			return &models.DomainError{Param: name, Reason: "missing discrete parameter"}
		}
		v, ok := raw.(string)
		if !ok {
			return &models.DomainError{Param: name, Value: raw, Reason: "discrete parameter must be a string"}
		}
		if !contains(set, v) {
			return &models.DomainError{
				Param: name, Value: v,
				Reason: fmt.Sprintf("not in declared set %v", set),
			}
		}
	}

	for name := range c {
		if _, ok := s.Continuous[name]; ok {
			continue
		}
		if _, ok := s.Discrete[name]; ok {
			continue
		}
		return &models.DomainError{Param: name, Value: c[name], Reason: "undeclared parameter"}
	}

	return nil
}

// paramNames returns all dimension names in a stable order, continuous
// first. Sampling iterates this so a fixed seed always draws the same
// candidates.
func (s ParameterSpace) paramNames() (continuous, discrete []string) {
	for name := range s.Continuous {
		continuous = append(continuous, name)
	}
	for name := range s.Discrete {
		discrete = append(discrete, name)
	}
	sort.Strings(continuous)
	sort.Strings(discrete)
	return continuous, discrete
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
