package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/BenoitGuillaud/budapest-market/models"
	"github.com/BenoitGuillaud/budapest-market/utils"
)

// PostgresWriter persists prepared datasets to PostgreSQL, one row per
// surviving listing, keyed by (run_id, listing_id) so repeated runs stay
// distinguishable.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string, logger zerolog.Logger) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 5, BaseDelay: 2 * time.Second, Logger: logger}
	if err := retry.Do("postgres ping", db.Ping); err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS prepared_listings (
			run_id     UUID         NOT NULL,
			listing_id VARCHAR(32)  NOT NULL,
			mode       VARCHAR(10)  NOT NULL,
			price      NUMERIC(12,3),
			rent       NUMERIC(12,3),
			area       INTEGER      NOT NULL,
			fullrooms  INTEGER      NOT NULL DEFAULT 0,
			halfrooms  INTEGER      NOT NULL DEFAULT 0,
			district   VARCHAR(10)  NOT NULL,
			varos      TEXT,
			floor      VARCHAR(12),
			lift       BOOLEAN,
			balcony    BOOLEAN,
			aircon     BOOLEAN,
			lat        DOUBLE PRECISION,
			long       DOUBLE PRECISION,
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			PRIMARY KEY (run_id, listing_id)
		);

		CREATE INDEX IF NOT EXISTS idx_prepared_district ON prepared_listings(district);
		CREATE INDEX IF NOT EXISTS idx_prepared_mode     ON prepared_listings(mode);
	`)
	return err
}

// WritePrepared batch-inserts every listing of the prepared dataset under
// its run id.
func (pw *PostgresWriter) WritePrepared(ds *models.PreparedDataset) error {
	if len(ds.Listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(ds.Listings); i += batchSize {
		end := i + batchSize
		if end > len(ds.Listings) {
			end = len(ds.Listings)
		}
		if err := pw.insertBatch(ds, ds.Listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(ds *models.PreparedDataset, batch []*models.Listing) error {
	const cols = 16
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		ph := make([]string, cols)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")

		var floor *string
		if l.Floor != nil {
			s := l.Floor.String()
			floor = &s
		}
		valueArgs = append(valueArgs,
			ds.Report.RunID, l.ID, string(ds.Mode),
			l.Price, l.MonthlyRent, l.Area, l.RoomsFull, l.RoomsHalf,
			l.District, l.Varos, floor, l.Lift, l.Balcony, l.Aircon,
			l.Lat, l.Long)
	}

	query := fmt.Sprintf(`
		INSERT INTO prepared_listings
			(run_id, listing_id, mode, price, rent, area, fullrooms, halfrooms,
			 district, varos, floor, lift, balcony, aircon, lat, long)
		VALUES %s
		ON CONFLICT (run_id, listing_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// CountRun returns how many listings are stored under the given run id.
func (pw *PostgresWriter) CountRun(runID string) (int, error) {
	var n int
	err := pw.db.QueryRow(
		`SELECT COUNT(*) FROM prepared_listings WHERE run_id = $1`, runID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("postgres: count run: %w", err)
	}
	return n, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
