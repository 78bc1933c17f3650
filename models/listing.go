package models

// Mode selects which market a raw file describes. Sale files carry a price
// column (million HUF), rental files a monthly rent column (thousand HUF).
type Mode string

const (
	ModeSale   Mode = "sale"
	ModeRental Mode = "rental"
)

// RawRecord is one data row of the scraped input file, untyped, keyed by the
// header names. Line is the 1-based line number in the source file (the
// header is line 1).
type RawRecord struct {
	Line   int
	Fields map[string]string
}

// Get returns the raw value for the named column, or "" if the column is
// absent from the file.
func (r *RawRecord) Get(name string) string {
	return r.Fields[name]
}

// Listing is one cleaned, typed property advertisement. Nullable fields are
// pointers; nil means the advertiser did not provide the value.
type Listing struct {
	ID string

	Price       *float64 // sale price, million HUF
	MonthlyRent *float64 // monthly rent, thousand HUF

	Area      int // m², positive
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
	Balcony   *bool
	Aircon    *bool
	Ceiling   *float64 // belmagasság, metres
	Utility   *string
	Bathrooms *string
	Garden    *bool

	Lat  *float64
	Long *float64

	// Line is carried from the RawRecord for drop reporting.
	Line int
}

// Outcome returns the listing's price or rent depending on mode.
func (l *Listing) Outcome(mode Mode) (float64, bool) {
	switch mode {
	case ModeSale:
		if l.Price != nil {
			return *l.Price, true
		}
	case ModeRental:
		if l.MonthlyRent != nil {
			return *l.MonthlyRent, true
		}
	}
	return 0, false
}

// CategoricalFields lists every free-form categorical column in pipeline
// order. The preparer's sentinel cleaning and domain pruning iterate this
// list so that each field is handled independently.
var CategoricalFields = []string{
	"district", "varos", "condition", "heating", "view",
	"orient", "parking", "utility", "bathtoil",
}

// Categorical returns the listing's value for a categorical field name.
// ok is false when the field is missing on this listing.
func (l *Listing) Categorical(name string) (string, bool) {
	switch name {
	case "district":
		return l.District, l.District != ""
	case "varos":
		return deref(l.Varos)
	case "condition":
		return deref(l.Condition)
	case "heating":
		return deref(l.Heating)
	case "view":
		return deref(l.View)
	case "orient":
		return deref(l.Orient)
	case "parking":
		return deref(l.Parking)
	case "utility":
		return deref(l.Utility)
	case "bathtoil":
		return deref(l.Bathrooms)
	}
	return "", false
}

// SetCategorical overwrites a categorical field; an empty value means missing.
func (l *Listing) SetCategorical(name, value string) {
	var p *string
	if value != "" {
		v := value
		p = &v
	}
	switch name {
	case "district":
		l.District = value
	case "varos":
		l.Varos = p
	case "condition":
		l.Condition = p
	case "heating":
		l.Heating = p
	case "view":
		l.View = p
	case "orient":
		l.Orient = p
	case "parking":
		l.Parking = p
	case "utility":
		l.Utility = p
	case "bathtoil":
		l.Bathrooms = p
	}
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}
