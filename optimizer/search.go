package optimizer

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/BenoitGuillaud/budapest-market/models"
	"github.com/BenoitGuillaud/budapest-market/utils"
)

// SearchResult is the best design point a search found, with its score and
// the evaluation bookkeeping.
type SearchResult struct {
	Best      Candidate
	Score     float64
	Evaluated int
	Rejected  int
}

// RandomSearch is a budget-bounded uniform sampler over a parameter space.
// Candidates are drawn up-front from a seeded generator, so the draw is
// deterministic for a fixed (space, budget, seed); evaluation then runs on a
// worker pool, which the objective's purity makes safe.
type RandomSearch struct {
	budget  int
	seed    int64
	workers int
	logger  zerolog.Logger
}

// NewRandomSearch creates a search evaluating at most budget candidates on
// the given number of workers.
func NewRandomSearch(budget int, seed int64, workers int, logger zerolog.Logger) *RandomSearch {
	return &RandomSearch{budget: budget, seed: seed, workers: workers, logger: logger}
}

// Optimize draws and scores candidates, returning the best-found one.
// Candidates the objective rejects as out of domain are counted and skipped;
// they never abort the search.
func (s *RandomSearch) Optimize(obj *Objective) (*SearchResult, error) {
	if s.budget < 1 {
		return nil, fmt.Errorf("search: budget must be at least 1")
	}

	candidates := s.sample(obj.Space())

	scores := make([]float64, len(candidates))
	errs := make([]error, len(candidates))

	// Each job writes only its own index, so no lock is needed.
	pool := utils.NewWorkerPool(s.workers)
	for i := range candidates {
		i := i
		pool.Submit(func() {
			scores[i], errs[i] = obj.Evaluate(candidates[i])
		})
	}
	pool.Wait()

	result := &SearchResult{Score: math.Inf(-1)}
	for i := range candidates {
		if errs[i] != nil {
			var de *models.DomainError
			if errors.As(errs[i], &de) {
				result.Rejected++
				continue
			}
			return nil, fmt.Errorf("search: candidate %d: %w", i, errs[i])
		}
		result.Evaluated++
		if scores[i] > result.Score {
			result.Score = scores[i]
			result.Best = candidates[i]
		}
	}

	if result.Best == nil {
		return nil, fmt.Errorf("search: no candidate survived domain validation")
	}

	s.logger.Info().Msgf("[search] Evaluated %d candidates (%d rejected), best yield %.3f%%",
		result.Evaluated, result.Rejected, result.Score)
	return result, nil
}

// sample draws budget candidates uniformly over the space, iterating the
// dimensions in a stable order.
func (s *RandomSearch) sample(space ParameterSpace) []Candidate {
	rng := rand.New(rand.NewSource(s.seed))
	continuous, discrete := space.paramNames()

	candidates := make([]Candidate, s.budget)
	for i := range candidates {
		c := make(Candidate, len(continuous)+len(discrete))
		for _, name := range continuous {
			iv := space.Continuous[name]
			c[name] = iv.Min + rng.Float64()*(iv.Max-iv.Min)
		}
		for _, name := range discrete {
			set := space.Discrete[name]
			c[name] = set[rng.Intn(len(set))]
		}
		candidates[i] = c
	}
	return candidates
}
