package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/BenoitGuillaud/budapest-market/models"
)

// preparedColumns is the header of a serialized prepared dataset. It uses
// the scraper's column names so a prepared file can be fed back through
// CSVReader and the preparation pipeline (which then finds nothing left
// to drop).
var preparedColumns = []string{
	"listing", "price", "rent", "area", "fullrooms", "halfrooms",
	"district", "varos", "condition", "floor", "storeys", "lift",
	"heating", "view", "lat", "long", "orient", "parking", "balcony",
	"aircon", "ceiling", "utility", "bathtoil", "garcess",
}

// CSVWriter serializes prepared listings back to the semicolon format for
// reproducibility between runs. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the BOM and header row. Intermediate directories are created
// automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write BOM: %w", err)
	}

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(preparedColumns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WritePrepared writes every listing of the prepared dataset, in order.
func (c *CSVWriter) WritePrepared(ds *models.PreparedDataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range ds.Listings {
		if err := c.writer.Write(listingRow(l)); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func listingRow(l *models.Listing) []string {
	return []string{
		l.ID,
		formatFloat(l.Price),
		formatFloat(l.MonthlyRent),
		strconv.Itoa(l.Area),
		strconv.Itoa(l.RoomsFull),
		strconv.Itoa(l.RoomsHalf),
		l.District,
		strOrEmpty(l.Varos),
		strOrEmpty(l.Condition),
		floorToken(l.Floor),
		formatInt(l.Storeys),
		formatBool(l.Lift),
		strOrEmpty(l.Heating),
		strOrEmpty(l.View),
		formatFloat(l.Lat),
		formatFloat(l.Long),
		strOrEmpty(l.Orient),
		strOrEmpty(l.Parking),
		formatBool(l.Balcony),
		formatBool(l.Aircon),
		formatFloat(l.Ceiling),
		strOrEmpty(l.Utility),
		strOrEmpty(l.Bathrooms),
		formatBool(l.Garden),
	}
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'g', -1, 64)
}

func formatInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatBool(p *bool) string {
	if p == nil {
		return ""
	}
	if *p {
		return "1"
	}
	return "0"
}

func floorToken(f *models.FloorLevel) string {
	if f == nil {
		return ""
	}
	return f.String()
}
