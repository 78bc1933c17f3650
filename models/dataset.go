package models

// PreparedDataset is the pipeline output: cleaned listings in input order
// plus the realized categorical domain of every field. Built once per raw
// file; immutable afterwards.
type PreparedDataset struct {
	Mode     Mode
	Listings []*Listing

	// Domains holds, per categorical field, the distinct non-missing levels
	// actually present, in order of first appearance. After domain pruning
	// every level has at least one row.
	Domains map[string][]string

	Report *DropReport
}

// RowDrop records one row excluded by a type/range check, with its reason.
type RowDrop struct {
	Line      int
	ListingID string
	Reason    string
}

// DropReport counts the rows lost at each pipeline stage. It is a required
// output of every run so an analyst can sanity-check data loss.
type DropReport struct {
	RunID string
	Input int

	ParseInvalid int
	DuplicateID  int
	DuplicateKey int
	OutOfScope   int

	Survived int

	// Invalid lists the per-row reasons behind ParseInvalid.
	Invalid []RowDrop
}

// Dropped returns the total number of rows lost across all stages.
func (r *DropReport) Dropped() int {
	return r.ParseInvalid + r.DuplicateID + r.DuplicateKey + r.OutOfScope
}

// DerivedRow is a prepared listing augmented with the computed investment
// fields and with the balcony/aircon imputation applied.
type DerivedRow struct {
	ID string

	Price       float64 // sale mode, million HUF; 0 in rental mode
	PricePerSqm float64 // sale mode, thousand HUF per m²
	MonthlyRent float64 // rental mode, thousand HUF
	AnnualRent  float64 // rental mode, million HUF per year
	RentPerSqm  float64 // rental mode, thousand HUF per m² per year

	Area      float64
	RoomsFull int
	RoomsHalf int

	District string
	Varos    *string

	Condition *string
	Floor     *FloorLevel
	Storeys   *int
	Lift      *bool
	Heating   *string
	View      *string
	Orient    *string
	Parking   *string
	Balcony   bool // imputed: missing means no balcony
	Aircon    bool // imputed: missing means no air conditioning
	Ceiling   *float64
	Utility   *string
	Bathrooms *string

	Lat  *float64
	Long *float64
}

// Numeric resolves a numeric feature by name. Booleans are 0/1 and floor is
// its ordinal rank. ok is false when the value is missing on this row.
func (r *DerivedRow) Numeric(name string) (float64, bool) {
	switch name {
	case "price":
		return r.Price, true
	case "ppsm":
		return r.PricePerSqm, true
	case "rent":
		return r.MonthlyRent, true
	case "annual_rent":
		return r.AnnualRent, true
	case "rpsm":
		return r.RentPerSqm, true
	case "area":
		return r.Area, true
	case "fullrooms":
		return float64(r.RoomsFull), true
	case "halfrooms":
		return float64(r.RoomsHalf), true
	case "floor":
		if r.Floor == nil {
			return 0, false
		}
		return float64(r.Floor.Rank()), true
	case "storeys":
		if r.Storeys == nil {
			return 0, false
		}
		return float64(*r.Storeys), true
	case "lift":
		if r.Lift == nil {
			return 0, false
		}
		return boolToFloat(*r.Lift), true
	case "balcony":
		return boolToFloat(r.Balcony), true
	case "aircon":
		return boolToFloat(r.Aircon), true
	case "ceiling":
		if r.Ceiling == nil {
			return 0, false
		}
		return *r.Ceiling, true
	case "lat":
		if r.Lat == nil {
			return 0, false
		}
		return *r.Lat, true
	case "long":
		if r.Long == nil {
			return 0, false
		}
		return *r.Long, true
	}
	return 0, false
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Categorical resolves a categorical feature by name; ok is false when the
// value is missing on this row.
func (r *DerivedRow) Categorical(name string) (string, bool) {
	switch name {
	case "district":
		return r.District, r.District != ""
	case "varos":
		return deref(r.Varos)
	case "condition":
		return deref(r.Condition)
	case "heating":
		return deref(r.Heating)
	case "view":
		return deref(r.View)
	case "orient":
		return deref(r.Orient)
	case "parking":
		return deref(r.Parking)
	case "utility":
		return deref(r.Utility)
	case "bathtoil":
		return deref(r.Bathrooms)
	}
	return "", false
}

// FeatureTable is the model-ready projection of a prepared dataset: derived
// rows narrowed to a chosen feature subset. Fields records the projection;
// Domains is carried over from preparation for level-based encodings.
type FeatureTable struct {
	Mode    Mode
	Rows    []*DerivedRow
	Fields  []string
	Domains map[string][]string
}

// Partition is a disjoint train/test pair whose union is the input table.
type Partition struct {
	Train []*DerivedRow
	Test  []*DerivedRow
}

// EvaluationResult holds the standard regression-quality metrics for one
// observed/predicted vector pair.
type EvaluationResult struct {
	RMSE float64
	MAE  float64
	R2   float64
}

// Point is one (x, y) sample of a diagnostic series.
type Point struct {
	X float64
	Y float64
}

// DiagnosticSeries carries the two scatter series the evaluation reporter
// emits for an external plot sink.
type DiagnosticSeries struct {
	PredictedVsObserved   []Point
	ResidualPctVsObserved []Point
}

// MarketReport summarizes a prepared dataset for the analyst console.
type MarketReport struct {
	Mode          Mode
	TotalListings int

	// Outcome stats: price in sale mode, monthly rent in rental mode.
	AvgOutcome float64
	MinOutcome float64
	MaxOutcome float64

	ListingsByDistrict map[string]int
	ListingsByCell     map[string]int // geohash cell → count, coordinates only

	// BestValue lists the cheapest listings per m², at most five.
	BestValue []*Listing
}
