package storage

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/BenoitGuillaud/budapest-market/models"
)

// CSVReader parses the scraper's output: UTF-8 text with a leading byte-order
// mark, ';'-delimited, first row naming every field. It produces ordered
// RawRecords and performs no cleaning of its own.
type CSVReader struct {
	path string
}

// NewCSVReader creates a reader for the file at the given path.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{path: path}
}

// ReadAll reads the whole file, preserving row order. Structural problems
// (missing header, field-count mismatch, bytes that are not valid UTF-8)
// return a *models.MalformedInputError.
func (r *CSVReader) ReadAll() ([]*models.RawRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %q: %w", r.path, err)
	}
	defer f.Close()

	return ReadRecords(f)
}

// ReadRecords parses raw records from an arbitrary stream; see ReadAll.
func ReadRecords(in io.Reader) ([]*models.RawRecord, error) {
	br := bufio.NewReader(in)
	stripBOM(br)

	cr := csv.NewReader(br)
	cr.Comma = ';'
	// FieldsPerRecord stays 0 so encoding/csv enforces the header's count
	// on every data row.

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &models.MalformedInputError{Line: 1, Reason: "missing header row"}
	}
	if err != nil {
		return nil, &models.MalformedInputError{Line: 1, Reason: err.Error()}
	}

	columns := make([]string, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if !utf8.ValidString(h) {
			return nil, &models.MalformedInputError{Line: 1, Reason: "header is not valid UTF-8"}
		}
		columns[i] = h
	}
	if len(columns) == 1 && columns[0] == "" {
		return nil, &models.MalformedInputError{Line: 1, Reason: "missing header row"}
	}

	var records []*models.RawRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &models.MalformedInputError{Line: pe.Line, Reason: pe.Err.Error()}
			}
			return nil, &models.MalformedInputError{Line: line, Reason: err.Error()}
		}

		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			v := strings.TrimSpace(row[i])
			if !utf8.ValidString(v) {
				return nil, &models.MalformedInputError{Line: line, Reason: "row is not valid UTF-8"}
			}
			fields[col] = v
		}
		records = append(records, &models.RawRecord{Line: line, Fields: fields})
	}

	return records, nil
}

// stripBOM consumes a leading UTF-8 byte-order mark if present.
func stripBOM(br *bufio.Reader) {
	bom, err := br.Peek(3)
	if err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = br.Discard(3)
	}
}
