package model

import (
	"math"
	"strconv"
	"testing"

	"github.com/BenoitGuillaud/budapest-market/models"
)

func numericTable(areas []float64, price func(area float64) float64) *models.FeatureTable {
	rows := make([]*models.DerivedRow, len(areas))
	for i, a := range areas {
		rows[i] = &models.DerivedRow{
			ID:    "L" + strconv.Itoa(i),
			Area:  a,
			Price: price(a),
		}
	}
	return &models.FeatureTable{
		Mode:   models.ModeSale,
		Rows:   rows,
		Fields: []string{"price", "area"},
	}
}

func TestLinearRecoversExactFit(t *testing.T) {
	// price = 10 + 0.5 * area, noiseless.
	table := numericTable([]float64{30, 50, 70, 90, 120}, func(a float64) float64 {
		return 10 + 0.5*a
	})

	m, err := TrainLinear(table, "price")
	if err != nil {
		t.Fatalf("TrainLinear failed: %v", err)
	}

	preds, err := m.Predict([]*models.DerivedRow{{ID: "new", Area: 100}})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if math.Abs(preds[0]-60) > 1e-9 {
		t.Errorf("prediction for area 100: got %g, want 60", preds[0])
	}
}

func TestLinearOneHotEncoding(t *testing.T) {
	// price = 40 in district 5, 70 in district 6; the district indicator
	// must absorb the offset exactly.
	rows := []*models.DerivedRow{
		{ID: "A", District: "5", Price: 40},
		{ID: "B", District: "6", Price: 70},
		{ID: "C", District: "5", Price: 40},
		{ID: "D", District: "6", Price: 70},
	}
	table := &models.FeatureTable{
		Mode:    models.ModeSale,
		Rows:    rows,
		Fields:  []string{"price", "district"},
		Domains: map[string][]string{"district": {"5", "6"}},
	}

	m, err := TrainLinear(table, "price")
	if err != nil {
		t.Fatalf("TrainLinear failed: %v", err)
	}

	preds, err := m.Predict([]*models.DerivedRow{
		{ID: "x", District: "5"},
		{ID: "y", District: "6"},
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if math.Abs(preds[0]-40) > 1e-9 {
		t.Errorf("district 5: got %g, want 40", preds[0])
	}
	if math.Abs(preds[1]-70) > 1e-9 {
		t.Errorf("district 6: got %g, want 70", preds[1])
	}
}

func TestLinearUnseenLevelFallsBackToBaseline(t *testing.T) {
	rows := []*models.DerivedRow{
		{ID: "A", District: "5", Price: 40},
		{ID: "B", District: "6", Price: 70},
		{ID: "C", District: "5", Price: 40},
	}
	table := &models.FeatureTable{
		Mode:    models.ModeSale,
		Rows:    rows,
		Fields:  []string{"price", "district"},
		Domains: map[string][]string{"district": {"5", "6"}},
	}

	m, err := TrainLinear(table, "price")
	if err != nil {
		t.Fatalf("TrainLinear failed: %v", err)
	}
	preds, err := m.Predict([]*models.DerivedRow{{ID: "x", District: "7"}})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if math.Abs(preds[0]-40) > 1e-9 {
		t.Errorf("unseen level: got %g, want baseline 40", preds[0])
	}
}

func TestLinearRejectsUnderdeterminedFit(t *testing.T) {
	table := numericTable([]float64{50}, func(a float64) float64 { return a })
	if _, err := TrainLinear(table, "price"); err == nil {
		t.Errorf("expected an error for more coefficients than rows")
	}
}

func TestLinearRejectsEmptyDomain(t *testing.T) {
	table := &models.FeatureTable{
		Mode:    models.ModeSale,
		Rows:    []*models.DerivedRow{{ID: "A", District: "5", Price: 40}},
		Fields:  []string{"price", "district"},
		Domains: map[string][]string{},
	}
	if _, err := TrainLinear(table, "price"); err == nil {
		t.Errorf("expected an error for a categorical field with no domain")
	}
}
