package services

import (
	"testing"

	"github.com/BenoitGuillaud/budapest-market/models"
)

func insightDataset() *models.PreparedDataset {
	return saleDataset(
		&models.Listing{ID: "A", Price: floatPtr(30), Area: 60, District: "5", Lat: floatPtr(47.51), Long: floatPtr(19.05)},
		&models.Listing{ID: "B", Price: floatPtr(90), Area: 90, District: "6", Lat: floatPtr(47.50), Long: floatPtr(19.06)},
		&models.Listing{ID: "C", Price: floatPtr(20), Area: 80, District: "6"},
	)
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(testLogger())
	r := svc.Generate(insightDataset())

	if r.TotalListings != 3 {
		t.Errorf("TotalListings: got %d, want 3", r.TotalListings)
	}
	if r.ListingsByDistrict["6"] != 2 {
		t.Errorf("district 6 count: got %d, want 2", r.ListingsByDistrict["6"])
	}
	if r.ListingsByDistrict["5"] != 1 {
		t.Errorf("district 5 count: got %d, want 1", r.ListingsByDistrict["5"])
	}
}

func TestInsightOutcomeStats(t *testing.T) {
	svc := NewInsightService(testLogger())
	r := svc.Generate(insightDataset())

	if r.MinOutcome != 20 {
		t.Errorf("MinOutcome: got %g, want 20", r.MinOutcome)
	}
	if r.MaxOutcome != 90 {
		t.Errorf("MaxOutcome: got %g, want 90", r.MaxOutcome)
	}
	wantAvg := 46.67
	if r.AvgOutcome != wantAvg {
		t.Errorf("AvgOutcome: got %g, want %g", r.AvgOutcome, wantAvg)
	}
}

func TestInsightLocationCells(t *testing.T) {
	svc := NewInsightService(testLogger())
	r := svc.Generate(insightDataset())

	// Only the two listings with coordinates are grouped into cells.
	total := 0
	for _, n := range r.ListingsByCell {
		total += n
	}
	if total != 2 {
		t.Errorf("cell total: got %d, want 2", total)
	}
}

func TestInsightBestValueOrdering(t *testing.T) {
	svc := NewInsightService(testLogger())
	r := svc.Generate(insightDataset())

	if len(r.BestValue) != 3 {
		t.Fatalf("BestValue len: got %d, want 3", len(r.BestValue))
	}
	// C is 0.25 M/m², A is 0.5, B is 1.0.
	if r.BestValue[0].ID != "C" {
		t.Errorf("BestValue[0]: got %q, want %q", r.BestValue[0].ID, "C")
	}
	if r.BestValue[2].ID != "B" {
		t.Errorf("BestValue[2]: got %q, want %q", r.BestValue[2].ID, "B")
	}
}

func TestInsightEmptyDataset(t *testing.T) {
	svc := NewInsightService(testLogger())
	r := svc.Generate(saleDataset())
	if r.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty dataset")
	}
}
