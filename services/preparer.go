package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BenoitGuillaud/budapest-market/models"
)

var (
	// districtRegexp extracts the district number from tokens like "5. ker".
	districtRegexp = regexp.MustCompile(`^(\d+)`)
	// numberRegexp captures the first numeric value in a free-form field.
	numberRegexp = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// Rules holds the business configuration of the preparation pipeline:
// which districts are in scope, which token marks an unspecified value, and
// which coarse varos labels duplicate finer levels already present.
type Rules struct {
	Districts         []string
	Sentinel          string
	VarosLegacyLabels []string
}

// Preparer turns raw scraped records into a PreparedDataset. The pipeline is
// deterministic: the same input rows, in the same order, produce the same
// output rows in the same order. Every stage is a stable, order-preserving
// filter over the previous stage's output.
type Preparer struct {
	mode        models.Mode
	districts   map[string]struct{}
	sentinel    string
	legacyVaros map[string]struct{}
	logger      zerolog.Logger
}

// NewPreparer creates a Preparer for one market mode with the given rules.
func NewPreparer(mode models.Mode, rules Rules, logger zerolog.Logger) *Preparer {
	districts := make(map[string]struct{}, len(rules.Districts))
	for _, d := range rules.Districts {
		districts[d] = struct{}{}
	}
	legacy := make(map[string]struct{}, len(rules.VarosLegacyLabels))
	for _, l := range rules.VarosLegacyLabels {
		legacy[l] = struct{}{}
	}
	return &Preparer{
		mode:        mode,
		districts:   districts,
		sentinel:    rules.Sentinel,
		legacyVaros: legacy,
		logger:      logger,
	}
}

// Prepare runs the full pipeline. Row-level malformations are excluded with
// a recorded reason; structural malformations (an unknown floor token) abort
// the run with a *models.MalformedInputError.
func (p *Preparer) Prepare(records []*models.RawRecord) (*models.PreparedDataset, error) {
	report := &models.DropReport{
		RunID: uuid.NewString(),
		Input: len(records),
	}

	listings, err := p.parseRows(records, report)
	if err != nil {
		return nil, err
	}

	listings = p.dedupByID(listings, report)
	listings = p.dedupByKey(listings, report)
	listings = p.scopeFilter(listings, report)
	listings = p.cleanSentinels(listings)
	listings = p.recodeVaros(listings)
	domains := p.pruneDomains(listings)

	report.Survived = len(listings)
	p.logger.Info().Msgf("[preparer] Prepared %d → %d listings (invalid %d, dup-id %d, dup-key %d, out-of-scope %d)",
		report.Input, report.Survived, report.ParseInvalid,
		report.DuplicateID, report.DuplicateKey, report.OutOfScope)

	return &models.PreparedDataset{
		Mode:     p.mode,
		Listings: listings,
		Domains:  domains,
		Report:   report,
	}, nil
}

// parseRows converts raw string rows into typed listings. A failed type or
// range check drops the single row with a recorded reason; an out-of-domain
// floor token is structural and fatal.
func (p *Preparer) parseRows(records []*models.RawRecord, report *models.DropReport) ([]*models.Listing, error) {
	listings := make([]*models.Listing, 0, len(records))

	for _, rec := range records {
		l, err := p.parseRow(rec)
		if err != nil {
			if inv, ok := err.(*models.RowInvalidError); ok {
				report.ParseInvalid++
				report.Invalid = append(report.Invalid, models.RowDrop{
					Line:      inv.Line,
					ListingID: inv.ListingID,
					Reason:    inv.Field + ": " + inv.Reason,
				})
				p.logger.Debug().Msgf("[preparer] Dropping row: %v", inv)
				continue
			}
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (p *Preparer) parseRow(rec *models.RawRecord) (*models.Listing, error) {
	id := rec.Get("listing")
	invalid := func(field, reason string) error {
		return &models.RowInvalidError{Line: rec.Line, ListingID: id, Field: field, Reason: reason}
	}

	if id == "" {
		return nil, invalid("listing", "missing listing id")
	}

	l := &models.Listing{ID: id, Line: rec.Line}

	switch p.mode {
	case models.ModeSale:
		price, err := parseFloat(rec.Get("price"))
		if err != nil {
			return nil, invalid("price", "non-numeric price")
		}
		l.Price = &price
	case models.ModeRental:
		rent, err := parseFloat(rec.Get("rent"))
		if err != nil {
			return nil, invalid("rent", "non-numeric rent")
		}
		l.MonthlyRent = &rent
	default:
		return nil, fmt.Errorf("preparer: unknown mode %q", p.mode)
	}

	area, err := strconv.Atoi(rec.Get("area"))
	if err != nil {
		return nil, invalid("area", "non-numeric area")
	}
	if area <= 0 {
		return nil, invalid("area", "area must be positive")
	}
	l.Area = area

	if l.RoomsFull, err = parseCount(rec.Get("fullrooms")); err != nil {
		return nil, invalid("fullrooms", err.Error())
	}
	if l.RoomsHalf, err = parseCount(rec.Get("halfrooms")); err != nil {
		return nil, invalid("halfrooms", err.Error())
	}

	district := districtRegexp.FindString(rec.Get("district"))
	if district == "" {
		return nil, invalid("district", "missing district")
	}
	l.District = district

	if v := rec.Get("varos"); v != "" {
		l.Varos = &v
	}

	// Free-form categorical fields keep their raw value here; sentinel
	// cleaning is its own pipeline stage.
	l.Condition = optString(rec.Get("condition"))
	l.Heating = optString(rec.Get("heating"))
	l.View = optString(rec.Get("view"))
	l.Orient = optString(rec.Get("orient"))
	l.Parking = optString(rec.Get("parking"))
	l.Utility = optString(rec.Get("utility"))
	l.Bathrooms = optString(rec.Get("bathtoil"))

	if l.Floor, err = p.parseFloor(rec); err != nil {
		return nil, err
	}

	l.Storeys = p.optInt(rec.Get("storeys"))
	l.Lift = p.optBool(rec.Get("lift"))
	l.Balcony = p.optBalcony(rec.Get("balcony"))
	l.Aircon = p.optBool(rec.Get("aircon"))
	l.Ceiling = p.optMeasure(rec.Get("ceiling"))
	l.Garden = p.optBool(rec.Get("garcess"))

	if l.Lat, err = optCoord(rec.Get("lat")); err != nil {
		return nil, invalid("lat", "unparseable coordinate")
	}
	if l.Long, err = optCoord(rec.Get("long")); err != nil {
		return nil, invalid("long", "unparseable coordinate")
	}

	return l, nil
}

// parseFloor validates the ordinal floor domain. Unlike the value checks
// above, an unknown token means the file itself is malformed.
func (p *Preparer) parseFloor(rec *models.RawRecord) (*models.FloorLevel, error) {
	raw := rec.Get("floor")
	if raw == "" || raw == p.sentinel {
		return nil, nil
	}
	f, err := models.ParseFloorLevel(raw)
	if err != nil {
		return nil, &models.MalformedInputError{Line: rec.Line, Reason: err.Error()}
	}
	return &f, nil
}

// dedupByID keeps the first occurrence of every listing id. First wins is
// documented behavior, not an accident: downstream seeded splits depend on
// stable row order.
func (p *Preparer) dedupByID(listings []*models.Listing, report *models.DropReport) []*models.Listing {
	seen := make(map[string]struct{}, len(listings))
	result := make([]*models.Listing, 0, len(listings))

	for _, l := range listings {
		if _, dup := seen[l.ID]; dup {
			report.DuplicateID++
			p.logger.Debug().Msgf("[preparer] Duplicate listing id skipped: %s", l.ID)
			continue
		}
		seen[l.ID] = struct{}{}
		result = append(result, l)
	}
	return result
}

// dedupByKey drops rows repeating an earlier row's composite key (outcome,
// area, rooms, district, floor, lat, long). A row missing any key field is
// never considered equal to anything, including another such row.
func (p *Preparer) dedupByKey(listings []*models.Listing, report *models.DropReport) []*models.Listing {
	seen := make(map[string]struct{}, len(listings))
	result := make([]*models.Listing, 0, len(listings))

	for _, l := range listings {
		key, ok := p.compositeKey(l)
		if !ok {
			result = append(result, l)
			continue
		}
		if _, dup := seen[key]; dup {
			report.DuplicateKey++
			p.logger.Debug().Msgf("[preparer] Duplicate listing content skipped: %s", l.ID)
			continue
		}
		seen[key] = struct{}{}
		result = append(result, l)
	}
	return result
}

func (p *Preparer) compositeKey(l *models.Listing) (string, bool) {
	outcome, ok := l.Outcome(p.mode)
	if !ok || l.Floor == nil || l.Lat == nil || l.Long == nil {
		return "", false
	}
	return fmt.Sprintf("%s|%d|%d+%d|%s|%d|%s|%s",
		strconv.FormatFloat(outcome, 'g', -1, 64),
		l.Area, l.RoomsFull, l.RoomsHalf, l.District, l.Floor.Rank(),
		strconv.FormatFloat(*l.Lat, 'g', -1, 64),
		strconv.FormatFloat(*l.Long, 'g', -1, 64)), true
}

// scopeFilter retains only in-scope districts. Out-of-scope rows are dropped
// entirely, never merged.
func (p *Preparer) scopeFilter(listings []*models.Listing, report *models.DropReport) []*models.Listing {
	result := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := p.districts[l.District]; !ok {
			report.OutOfScope++
			continue
		}
		result = append(result, l)
	}
	return result
}

// cleanSentinels turns the "unspecified" token into an explicit missing
// value, field by field. District is required and never carries a sentinel
// past parsing.
func (p *Preparer) cleanSentinels(listings []*models.Listing) []*models.Listing {
	for _, l := range listings {
		for _, field := range models.CategoricalFields {
			if field == "district" {
				continue
			}
			if v, ok := l.Categorical(field); ok && v == p.sentinel {
				l.SetCategorical(field, "")
			}
		}
	}
	return listings
}

// recodeVaros maps the configured legacy labels to missing. These labels
// denote the same area as a finer level already present and would otherwise
// double-count it. No other field gets bespoke recoding.
func (p *Preparer) recodeVaros(listings []*models.Listing) []*models.Listing {
	for _, l := range listings {
		if l.Varos == nil {
			continue
		}
		if _, legacy := p.legacyVaros[*l.Varos]; legacy {
			l.Varos = nil
		}
	}
	return listings
}

// pruneDomains computes the realized level set of every categorical field,
// in order of first appearance. Every returned level has at least one row.
func (p *Preparer) pruneDomains(listings []*models.Listing) map[string][]string {
	domains := make(map[string][]string, len(models.CategoricalFields))
	for _, field := range models.CategoricalFields {
		seen := make(map[string]struct{})
		var levels []string
		for _, l := range listings {
			v, ok := l.Categorical(field)
			if !ok {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			levels = append(levels, v)
		}
		domains[field] = levels
	}
	return domains
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("non-numeric count")
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count")
	}
	return n, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optCoord(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (p *Preparer) optInt(s string) *int {
	if s == "" || s == p.sentinel {
		return nil
	}
	m := numberRegexp.FindString(s)
	if m == "" {
		return nil
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &n
}

// optBool understands the source site's van/nincs answers plus plain
// true/false spellings. Anything else is missing.
func (p *Preparer) optBool(s string) *bool {
	if s == "" || s == p.sentinel {
		return nil
	}
	var v bool
	switch strings.ToLower(s) {
	case "van", "igen", "yes", "true", "1":
		v = true
	case "nincs", "nem", "no", "false", "0":
		v = false
	default:
		return nil
	}
	return &v
}

// optBalcony treats the scraped balcony size as a boolean: any positive
// size means the flat has a balcony.
func (p *Preparer) optBalcony(s string) *bool {
	if s == "" || s == p.sentinel {
		return nil
	}
	if m := numberRegexp.FindString(s); m != "" {
		size, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
		if err == nil {
			v := size > 0
			return &v
		}
	}
	return p.optBool(s)
}

// optMeasure extracts the numeric part of fields like "3 m".
func (p *Preparer) optMeasure(s string) *float64 {
	if s == "" || s == p.sentinel {
		return nil
	}
	m := numberRegexp.FindString(s)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &f
}
