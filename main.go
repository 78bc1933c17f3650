package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/BenoitGuillaud/budapest-market/config"
	"github.com/BenoitGuillaud/budapest-market/model"
	"github.com/BenoitGuillaud/budapest-market/models"
	"github.com/BenoitGuillaud/budapest-market/optimizer"
	"github.com/BenoitGuillaud/budapest-market/services"
	"github.com/BenoitGuillaud/budapest-market/storage"
	"github.com/BenoitGuillaud/budapest-market/utils"
)

// featureFields is the projection both surrogate models are trained on,
// without the outcome. Every field here must be resolvable from an
// optimizer candidate by bindCandidate.
var featureFields = []string{
	"area", "fullrooms", "halfrooms", "district", "lift", "balcony", "aircon",
}

func main() {
	cfg := config.Load()
	logger := utils.NewLogger(cfg.AppEnv)

	logger.Info().Msgf("=== Budapest flat-market analysis starting ===")
	logger.Info().Msgf("Config — districts: %v | split: p=%.2f seed=%d | search: budget=%d seed=%d",
		cfg.Districts, cfg.TrainFraction, cfg.SplitSeed, cfg.SearchBudget, cfg.SearchSeed)

	rules := services.Rules{
		Districts:         cfg.Districts,
		Sentinel:          cfg.SentinelToken,
		VarosLegacyLabels: cfg.VarosLegacyLabels,
	}

	pg, err := storage.NewPostgresWriter(cfg.DSN(), logger)
	if err != nil {
		logger.Warn().Msgf("PostgreSQL unavailable, prepared datasets stay on disk only: %v", err)
		pg = nil
	} else {
		defer pg.Close()
	}

	priceModel := processMarket(cfg, rules, pg, logger, models.ModeSale, cfg.SaleCSVPath, "price")
	rentModel := processMarket(cfg, rules, pg, logger, models.ModeRental, cfg.RentalCSVPath, "annual_rent")

	best := recommend(cfg, logger, priceModel, rentModel)
	fmt.Printf("\n  Recommended flat — area %.0f m², district %s, lift: %s\n",
		best.Best["area"].(float64), best.Best["district"].(string), best.Best["lift"].(string))
	fmt.Printf("  Expected annual rental yield: %.2f%%\n\n", best.Score)
}

// processMarket runs the full per-file flow: read, prepare, report, persist,
// derive, split, train, evaluate. It returns the fitted surrogate model.
func processMarket(cfg *config.Config, rules services.Rules, pg *storage.PostgresWriter,
	logger zerolog.Logger, mode models.Mode, path, outcome string) model.Model {

	records, err := storage.NewCSVReader(path).ReadAll()
	if err != nil {
		logger.Error().Msgf("Failed to read %s input %q: %v", mode, path, err)
		os.Exit(1)
	}
	if len(records) == 0 {
		logger.Error().Msgf("No %s rows in %q. Exiting.", mode, path)
		os.Exit(1)
	}

	preparer := services.NewPreparer(mode, rules, logger)
	ds, err := preparer.Prepare(records)
	if err != nil {
		logger.Error().Msgf("Preparation of %s data failed: %v", mode, err)
		os.Exit(1)
	}
	if len(ds.Listings) == 0 {
		logger.Error().Msgf("All %s listings were dropped during preparation. Exiting.", mode)
		os.Exit(1)
	}

	insight := services.NewInsightService(logger)
	insight.PrintDropReport(ds.Report)
	insight.Print(insight.Generate(ds))

	persist(cfg, pg, logger, ds)

	deriver := services.NewDeriver(logger)
	table, err := deriver.Derive(ds, append([]string{outcome}, featureFields...))
	if err != nil {
		logger.Error().Msgf("Derivation of %s data failed: %v", mode, err)
		os.Exit(1)
	}

	splitter := services.NewSplitter(cfg.SplitBuckets, logger)
	part, err := splitter.Split(table, outcome, cfg.TrainFraction, cfg.SplitSeed)
	if err != nil {
		logger.Error().Msgf("Split of %s data failed: %v", mode, err)
		os.Exit(1)
	}

	trainTable := &models.FeatureTable{
		Mode: table.Mode, Rows: part.Train, Fields: table.Fields, Domains: table.Domains,
	}
	fitted, err := model.TrainLinear(trainTable, outcome)
	if err != nil {
		logger.Error().Msgf("Training %s model failed: %v", mode, err)
		os.Exit(1)
	}

	observed := make([]float64, len(part.Test))
	for i, row := range part.Test {
		observed[i], _ = row.Numeric(outcome)
	}
	predicted, err := fitted.Predict(part.Test)
	if err != nil {
		logger.Error().Msgf("Prediction on %s test set failed: %v", mode, err)
		os.Exit(1)
	}
	result, err := services.Evaluate(observed, predicted)
	if err != nil {
		logger.Error().Msgf("Evaluation of %s model failed: %v", mode, err)
		os.Exit(1)
	}
	logger.Info().Msgf("[evaluate] %s model on %d held-out rows: RMSE=%.3f MAE=%.3f R²=%.3f",
		mode, len(part.Test), result.RMSE, result.MAE, result.R2)

	return fitted
}

// persist serializes the prepared dataset to disk and, when available, to
// PostgreSQL. Storage failures are reported, not fatal: the analysis itself
// only needs the in-memory dataset.
func persist(cfg *config.Config, pg *storage.PostgresWriter, logger zerolog.Logger, ds *models.PreparedDataset) {
	outPath := filepath.Join(cfg.PreparedCSVDir, fmt.Sprintf("prepared_%s.csv", ds.Mode))
	w, err := storage.NewCSVWriter(outPath)
	if err != nil {
		logger.Warn().Msgf("CSV writer for %q failed: %v", outPath, err)
	} else {
		if err := w.WritePrepared(ds); err != nil {
			logger.Warn().Msgf("CSV write failed: %v", err)
		} else {
			logger.Info().Msgf("Prepared %s dataset saved to %s", ds.Mode, outPath)
		}
		_ = w.Close()
	}

	if pg == nil {
		return
	}
	if err := pg.WritePrepared(ds); err != nil {
		logger.Warn().Msgf("PostgreSQL write failed: %v", err)
		return
	}
	logger.Info().Msgf("Prepared %s dataset stored in PostgreSQL (run %s)", ds.Mode, ds.Report.RunID)
}

// recommend declares the searchable flat configuration space and runs the
// random search over the surrogate yield objective.
func recommend(cfg *config.Config, logger zerolog.Logger, price, rent model.Model) *optimizer.SearchResult {
	space := optimizer.ParameterSpace{
		Continuous: map[string]optimizer.Interval{
			"area": {Min: cfg.AreaMin, Max: cfg.AreaMax},
		},
		Discrete: map[string][]string{
			"district": cfg.Districts,
			"lift":     {"0", "1"},
		},
	}

	objective := optimizer.NewObjective(price, rent, space, bindCandidate)
	search := optimizer.NewRandomSearch(cfg.SearchBudget, cfg.SearchSeed, cfg.SearchWorkers, logger)

	result, err := search.Optimize(objective)
	if err != nil {
		logger.Error().Msgf("Investment search failed: %v", err)
		os.Exit(1)
	}
	return result
}

// bindCandidate maps a validated candidate onto a derived row. Dimensions
// the search does not explore are pinned to a representative flat: two full
// rooms, no amenities.
func bindCandidate(c optimizer.Candidate) (*models.DerivedRow, error) {
	lift := c["lift"].(string) == "1"
	return &models.DerivedRow{
		ID:        "candidate",
		Area:      c["area"].(float64),
		RoomsFull: 2,
		RoomsHalf: 0,
		District:  c["district"].(string),
		Lift:      &lift,
	}, nil
}
