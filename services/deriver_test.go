package services

import (
	"testing"

	"github.com/BenoitGuillaud/budapest-market/models"
)

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func saleDataset(listings ...*models.Listing) *models.PreparedDataset {
	return &models.PreparedDataset{
		Mode:     models.ModeSale,
		Listings: listings,
		Domains:  map[string][]string{"district": {"6"}},
		Report:   &models.DropReport{},
	}
}

func TestDeriverPricePerSqm(t *testing.T) {
	ds := saleDataset(&models.Listing{ID: "A", Price: floatPtr(30), Area: 60, District: "6"})

	table, err := NewDeriver(testLogger()).Derive(ds, []string{"price", "ppsm", "area"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(table.Rows))
	}
	// 30 M Ft on 60 m² is 500 k Ft per m².
	if got := table.Rows[0].PricePerSqm; got != 500 {
		t.Errorf("PricePerSqm: got %g, want 500", got)
	}
}

func TestDeriverRentalFields(t *testing.T) {
	ds := &models.PreparedDataset{
		Mode: models.ModeRental,
		Listings: []*models.Listing{
			{ID: "A", MonthlyRent: floatPtr(150), Area: 60, District: "6"},
		},
		Domains: map[string][]string{"district": {"6"}},
		Report:  &models.DropReport{},
	}

	table, err := NewDeriver(testLogger()).Derive(ds, []string{"annual_rent", "rpsm"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	row := table.Rows[0]
	if row.AnnualRent != 1.8 {
		t.Errorf("AnnualRent: got %g, want 1.8", row.AnnualRent)
	}
	if row.RentPerSqm != 30 {
		t.Errorf("RentPerSqm: got %g, want 30", row.RentPerSqm)
	}
}

func TestDeriverImputesMissingAmenities(t *testing.T) {
	ds := saleDataset(&models.Listing{
		ID: "A", Price: floatPtr(30), Area: 60, District: "6",
		Balcony: nil, Aircon: nil, Lift: nil,
	})

	table, err := NewDeriver(testLogger()).Derive(ds, []string{"price", "balcony", "aircon"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	row := table.Rows[0]
	if row.Balcony {
		t.Errorf("missing balcony must impute to false")
	}
	if row.Aircon {
		t.Errorf("missing aircon must impute to false")
	}
	// The imputation contract covers exactly two fields; lift stays missing.
	if row.Lift != nil {
		t.Errorf("lift must not be imputed")
	}
}

func TestDeriverKeepsExplicitAmenities(t *testing.T) {
	ds := saleDataset(&models.Listing{
		ID: "A", Price: floatPtr(30), Area: 60, District: "6",
		Balcony: boolPtr(true), Aircon: boolPtr(true),
	})

	table, err := NewDeriver(testLogger()).Derive(ds, []string{"price"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if !table.Rows[0].Balcony || !table.Rows[0].Aircon {
		t.Errorf("explicit amenity answers must survive derivation")
	}
}

func TestDeriverGuardsNonPositiveArea(t *testing.T) {
	ds := saleDataset(
		&models.Listing{ID: "A", Price: floatPtr(30), Area: 0, District: "6"},
		&models.Listing{ID: "B", Price: floatPtr(30), Area: 60, District: "6"},
	)

	table, err := NewDeriver(testLogger()).Derive(ds, []string{"price", "ppsm"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0].ID != "B" {
		t.Fatalf("zero-area row must be excluded, got %d rows", len(table.Rows))
	}
}

func TestDeriverRejectsUnknownField(t *testing.T) {
	ds := saleDataset(&models.Listing{ID: "A", Price: floatPtr(30), Area: 60, District: "6"})

	if _, err := NewDeriver(testLogger()).Derive(ds, []string{"price", "swimming_pool"}); err == nil {
		t.Errorf("expected an error for an unknown projection field")
	}
}

func TestDeriverProjectionDoesNotFilterRows(t *testing.T) {
	ds := saleDataset(
		&models.Listing{ID: "A", Price: floatPtr(30), Area: 60, District: "6"},
		&models.Listing{ID: "B", Price: floatPtr(40), Area: 80, District: "6"},
	)

	narrow, err := NewDeriver(testLogger()).Derive(ds, []string{"price"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	wide, err := NewDeriver(testLogger()).Derive(ds, []string{"price", "area", "district"})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if len(narrow.Rows) != len(wide.Rows) {
		t.Errorf("projection changed row count: %d vs %d", len(narrow.Rows), len(wide.Rows))
	}
	if len(narrow.Fields) != 1 || len(wide.Fields) != 3 {
		t.Errorf("projection field lists not recorded: %v / %v", narrow.Fields, wide.Fields)
	}
}
