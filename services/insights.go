package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmcloughlin/geohash"
	"github.com/rs/zerolog"

	"github.com/BenoitGuillaud/budapest-market/models"
)

// cellPrecision is the geohash length used to group listings by location;
// six characters is roughly a 1.2 km × 0.6 km cell.
const cellPrecision = 6

// InsightService summarizes a prepared dataset for the analyst console.
type InsightService struct {
	logger zerolog.Logger
}

// NewInsightService creates an InsightService with the given logger.
func NewInsightService(logger zerolog.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate computes the market report over a prepared dataset.
func (s *InsightService) Generate(ds *models.PreparedDataset) *models.MarketReport {
	report := &models.MarketReport{
		Mode:               ds.Mode,
		ListingsByDistrict: make(map[string]int),
		ListingsByCell:     make(map[string]int),
	}

	if len(ds.Listings) == 0 {
		return report
	}
	report.TotalListings = len(ds.Listings)

	var priced []*models.Listing
	for _, l := range ds.Listings {
		report.ListingsByDistrict[l.District]++
		if l.Lat != nil && l.Long != nil {
			cell := geohash.EncodeWithPrecision(*l.Lat, *l.Long, cellPrecision)
			report.ListingsByCell[cell]++
		}
		if _, ok := l.Outcome(ds.Mode); ok {
			priced = append(priced, l)
		}
	}

	if len(priced) > 0 {
		first, _ := priced[0].Outcome(ds.Mode)
		report.MinOutcome = first
		report.MaxOutcome = first
		var total float64
		for _, l := range priced {
			v, _ := l.Outcome(ds.Mode)
			total += v
			if v < report.MinOutcome {
				report.MinOutcome = v
			}
			if v > report.MaxOutcome {
				report.MaxOutcome = v
			}
		}
		report.AvgOutcome = round2(total / float64(len(priced)))
		report.MinOutcome = round2(report.MinOutcome)
		report.MaxOutcome = round2(report.MaxOutcome)
	}

	// Cheapest per m², at most five. Sale mode only has the notion of a
	// purchase bargain; in rental mode the same ranking uses rent per m².
	sort.SliceStable(priced, func(i, j int) bool {
		return perSqm(priced[i], ds.Mode) < perSqm(priced[j], ds.Mode)
	})
	if len(priced) > 5 {
		report.BestValue = priced[:5]
	} else {
		report.BestValue = priced
	}

	return report
}

func perSqm(l *models.Listing, mode models.Mode) float64 {
	v, _ := l.Outcome(mode)
	return v / float64(l.Area)
}

// Print renders the report to the console.
func (s *InsightService) Print(r *models.MarketReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	unit := "M Ft"
	label := "Price"
	if r.Mode == models.ModeRental {
		unit = "k Ft/month"
		label = "Rent"
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  BUDAPEST FLAT MARKET — %s\033[0m\n", strings.ToUpper(string(r.Mode)))
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Prepared listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Println()

	fmt.Printf("\033[1;33m  %s Statistics\033[0m\n", label)
	fmt.Printf("  %s\n", thin)
	if r.AvgOutcome > 0 {
		fmt.Printf("  Average : \033[1;32m%.2f %s\033[0m\n", r.AvgOutcome, unit)
		fmt.Printf("  Minimum : \033[1;32m%.2f %s\033[0m\n", r.MinOutcome, unit)
		fmt.Printf("  Maximum : \033[1;32m%.2f %s\033[0m\n", r.MaxOutcome, unit)
	} else {
		fmt.Printf("  No %s data available\n", strings.ToLower(label))
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Listings by District\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(r.ListingsByDistrict)
	fmt.Println()

	fmt.Printf("\033[1;33m  Listings by Location Cell\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ListingsByCell) == 0 {
		fmt.Printf("  No coordinate data\n")
	} else {
		printCounts(r.ListingsByCell)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Best Value (per m²)\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.BestValue) == 0 {
		fmt.Printf("  No priced listings\n")
	} else {
		for i, l := range r.BestValue {
			v, _ := l.Outcome(r.Mode)
			fmt.Printf("  \033[1m%d.\033[0m listing %-10s district %-3s %3d m²  \033[1;32m%.3f %s/m²\033[0m\n",
				i+1, l.ID, l.District, l.Area, v/float64(l.Area), unit)
		}
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

// PrintDropReport renders the pipeline's counts-by-stage summary. This is a
// required output of every run, not optional logging: the analyst uses it to
// sanity-check data loss.
func (s *InsightService) PrintDropReport(r *models.DropReport) {
	thin := strings.Repeat("─", 54)

	fmt.Printf("\033[1;33m  Pipeline Drop Report (run %s)\033[0m\n", r.RunID)
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Input rows            : %d\n", r.Input)
	fmt.Printf("  Invalid rows          : %d\n", r.ParseInvalid)
	fmt.Printf("  Duplicate listing ids : %d\n", r.DuplicateID)
	fmt.Printf("  Duplicate content     : %d\n", r.DuplicateKey)
	fmt.Printf("  Out-of-scope district : %d\n", r.OutOfScope)
	fmt.Printf("  Survived              : \033[1m%d\033[0m\n", r.Survived)
	for _, drop := range r.Invalid {
		fmt.Printf("    line %-5d listing %-10s %s\n", drop.Line, drop.ListingID, drop.Reason)
	}
	fmt.Println()
}

func printCounts(counts map[string]int) {
	type kc struct {
		key   string
		count int
	}
	var items []kc
	for k, c := range counts {
		items = append(items, kc{k, c})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].key < items[j].key
	})
	for _, it := range items {
		bar := strings.Repeat("█", it.count)
		fmt.Printf("  %-12s %s (%d)\n", it.key, bar, it.count)
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}
