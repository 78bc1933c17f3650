package services

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"github.com/BenoitGuillaud/budapest-market/models"
)

// Splitter builds stratified train/test partitions, balanced on the outcome
// variable's distribution. For a fixed (input order, seed, fraction) the
// partition is fully deterministic.
type Splitter struct {
	buckets int
	logger  zerolog.Logger
}

// NewSplitter creates a Splitter stratifying on the given number of outcome
// quantile buckets. Fewer than two buckets degenerates to a plain random
// split.
func NewSplitter(buckets int, logger zerolog.Logger) *Splitter {
	if buckets < 1 {
		buckets = 1
	}
	return &Splitter{buckets: buckets, logger: logger}
}

// Split partitions the table's rows on the named outcome field with training
// fraction p. Every input row lands in exactly one side; both sides preserve
// input order. The per-bucket train size is round(p·n), so the realized
// ratio deviates from p by at most one row per bucket.
func (s *Splitter) Split(table *models.FeatureTable, outcome string, p float64, seed int64) (*models.Partition, error) {
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("splitter: training fraction must be in (0,1), got %g", p)
	}
	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("splitter: %w", models.ErrEmptyInput)
	}

	values := make([]float64, len(table.Rows))
	for i, row := range table.Rows {
		v, ok := row.Numeric(outcome)
		if !ok {
			return nil, fmt.Errorf("splitter: row %s has no outcome %q", row.ID, outcome)
		}
		values[i] = v
	}

	bounds := s.bucketBounds(values)
	buckets := make([][]int, len(bounds)+1)
	for i, v := range values {
		b := bucketOf(v, bounds)
		buckets[b] = append(buckets[b], i)
	}

	rng := rand.New(rand.NewSource(seed))
	inTrain := make([]bool, len(table.Rows))
	for _, idx := range buckets {
		if len(idx) == 0 {
			continue
		}
		shuffled := append([]int(nil), idx...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		nTrain := int(math.Round(p * float64(len(shuffled))))
		for _, i := range shuffled[:nTrain] {
			inTrain[i] = true
		}
	}

	part := &models.Partition{}
	for i, row := range table.Rows {
		if inTrain[i] {
			part.Train = append(part.Train, row)
		} else {
			part.Test = append(part.Test, row)
		}
	}

	s.logger.Info().Msgf("[splitter] Split %d rows on %q: %d train / %d test (p=%.2f, %d buckets)",
		len(table.Rows), outcome, len(part.Train), len(part.Test), p, s.buckets)
	return part, nil
}

// bucketBounds returns the outcome values separating the quantile buckets.
func (s *Splitter) bucketBounds(values []float64) []float64 {
	if s.buckets < 2 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	bounds := make([]float64, 0, s.buckets-1)
	for b := 1; b < s.buckets; b++ {
		pos := b * len(sorted) / s.buckets
		if pos >= len(sorted) {
			pos = len(sorted) - 1
		}
		bounds = append(bounds, sorted[pos])
	}
	return bounds
}

// bucketOf returns the index of the first bound the value falls under.
func bucketOf(v float64, bounds []float64) int {
	for i, b := range bounds {
		if v < b {
			return i
		}
	}
	return len(bounds)
}
