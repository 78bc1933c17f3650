package services

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/BenoitGuillaud/budapest-market/models"
)

// derivableFields is the set of names a projection may request.
var derivableFields = map[string]struct{}{
	"price": {}, "ppsm": {}, "rent": {}, "annual_rent": {}, "rpsm": {},
	"area": {}, "fullrooms": {}, "halfrooms": {}, "floor": {}, "storeys": {},
	"lift": {}, "balcony": {}, "aircon": {}, "ceiling": {}, "lat": {}, "long": {},
	"district": {}, "varos": {}, "condition": {}, "heating": {}, "view": {},
	"orient": {}, "parking": {}, "utility": {}, "bathtoil": {},
}

// Deriver computes the investment fields over a prepared dataset and narrows
// rows to a chosen feature subset.
type Deriver struct {
	logger zerolog.Logger
}

// NewDeriver creates a Deriver with the given logger.
func NewDeriver(logger zerolog.Logger) *Deriver {
	return &Deriver{logger: logger}
}

// Derive computes the mode's derived fields for every listing and projects
// onto the given field list. Projection is pure column narrowing; it never
// filters rows. A prepared listing with a non-positive area is upstream data
// we do not trust, so it is guarded here and excluded as an invalid row.
func (d *Deriver) Derive(ds *models.PreparedDataset, fields []string) (*models.FeatureTable, error) {
	for _, f := range fields {
		if _, ok := derivableFields[f]; !ok {
			return nil, fmt.Errorf("deriver: unknown field %q", f)
		}
	}

	rows := make([]*models.DerivedRow, 0, len(ds.Listings))
	for _, l := range ds.Listings {
		row, err := d.deriveRow(ds.Mode, l)
		if err != nil {
			d.logger.Warn().Msgf("[deriver] Dropping listing %s: %v", l.ID, err)
			continue
		}
		rows = append(rows, row)
	}

	d.logger.Info().Msgf("[deriver] Derived %d rows (%s mode), %d feature columns",
		len(rows), ds.Mode, len(fields))

	return &models.FeatureTable{
		Mode:    ds.Mode,
		Rows:    rows,
		Fields:  append([]string(nil), fields...),
		Domains: ds.Domains,
	}, nil
}

// DeriveRow computes the derived fields for a single listing. Exposed so the
// surrogate objective can build rows for synthetic candidates.
func (d *Deriver) DeriveRow(mode models.Mode, l *models.Listing) (*models.DerivedRow, error) {
	return d.deriveRow(mode, l)
}

func (d *Deriver) deriveRow(mode models.Mode, l *models.Listing) (*models.DerivedRow, error) {
	if l.Area <= 0 {
		return nil, &models.RowInvalidError{
			Line: l.Line, ListingID: l.ID, Field: "area",
			Reason: models.ErrNonPositiveArea.Error(),
		}
	}

	row := &models.DerivedRow{
		ID:        l.ID,
		Area:      float64(l.Area),
		RoomsFull: l.RoomsFull,
		RoomsHalf: l.RoomsHalf,
		District:  l.District,
		Varos:     l.Varos,
		Condition: l.Condition,
		Floor:     l.Floor,
		Storeys:   l.Storeys,
		Lift:      l.Lift,
		Heating:   l.Heating,
		View:      l.View,
		Orient:    l.Orient,
		Parking:   l.Parking,
		Ceiling:   l.Ceiling,
		Utility:   l.Utility,
		Bathrooms: l.Bathrooms,
		Lat:       l.Lat,
		Long:      l.Long,
	}

	// Amenity imputation contract: a missing balcony or aircon answer means
	// the flat has none. This applies to these two fields only.
	if l.Balcony != nil {
		row.Balcony = *l.Balcony
	}
	if l.Aircon != nil {
		row.Aircon = *l.Aircon
	}

	switch mode {
	case models.ModeSale:
		if l.Price == nil {
			return nil, &models.RowInvalidError{
				Line: l.Line, ListingID: l.ID, Field: "price", Reason: "missing price",
			}
		}
		row.Price = *l.Price
		// million HUF → thousand HUF per m²
		row.PricePerSqm = *l.Price * 1000 / row.Area
	case models.ModeRental:
		if l.MonthlyRent == nil {
			return nil, &models.RowInvalidError{
				Line: l.Line, ListingID: l.ID, Field: "rent", Reason: "missing rent",
			}
		}
		row.MonthlyRent = *l.MonthlyRent
		// thousand HUF per month → million HUF per year
		row.AnnualRent = *l.MonthlyRent * 12 / 1000
		row.RentPerSqm = *l.MonthlyRent * 12 / row.Area
	default:
		return nil, fmt.Errorf("deriver: unknown mode %q", mode)
	}

	return row, nil
}
