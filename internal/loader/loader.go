// Package loader reads the per-country measurement files and combines them
// into a single table with an injected Country label column. A missing file
// is a warning, not a failure; finding no files at all is an error the
// caller must surface.
package loader

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"helioscope/domain/solar"
	"helioscope/domain/table"
	"helioscope/internal/errors"
)

// sources maps each country to the base name of its cleaned measurement
// file, tried with .csv then .xlsx extensions.
var sources = []struct {
	Country solar.Country
	Base    string
}{
	{solar.CountryBenin, "benin_clean"},
	{solar.CountrySierraLeone, "sierraleone_clean"},
	{solar.CountryTogo, "togo_clean"},
}

// timestampLayouts are tried in order when parsing the Timestamp column.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"1/2/2006 15:04",
}

// Loader reads country datasets from a flat-file data directory.
type Loader struct {
	dataDir string
}

// New creates a loader rooted at the given data directory.
func New(dataDir string) *Loader {
	return &Loader{dataDir: dataDir}
}

// LoadAll reads every available country file and concatenates them into one
// table with a Country column. Countries whose file is absent are skipped
// with a warning. If no file could be loaded at all, a NO_SOURCES error is
// returned and the caller must abort; there are no retries.
func (l *Loader) LoadAll() (*table.Table, error) {
	var combined *table.Table
	loaded := 0

	for _, src := range sources {
		path, ok := l.findSource(src.Base)
		if !ok {
			log.Printf("[Loader] Warning: no source file for %s (looked for %s.csv/.xlsx in %s)",
				src.Country, src.Base, l.dataDir)
			continue
		}

		t, err := l.loadCountry(path, src.Country)
		if err != nil {
			log.Printf("[Loader] Warning: skipping %s: %v", src.Country, err)
			continue
		}

		if combined == nil {
			combined = t
		} else {
			combined, err = combined.Append(t)
			if err != nil {
				return nil, errors.Wrapf(err, "combining %s into dataset", src.Country)
			}
		}
		loaded++
		log.Printf("[Loader] Loaded %s: %d rows, %d columns", src.Country, t.NumRows(), t.NumColumns())
	}

	if loaded == 0 {
		return nil, errors.NoSources(fmt.Sprintf("no country source files found in %s", l.dataDir))
	}
	return combined, nil
}

// LoadFile reads a single flat file into a table without injecting a country
// column. Used by the cleaning CLI.
func (l *Loader) LoadFile(path string) (*table.Table, error) {
	raw, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}
	return buildTable(raw, "")
}

// findSource locates the data file for a country, preferring CSV.
func (l *Loader) findSource(base string) (string, bool) {
	for _, ext := range []string{".csv", ".xlsx"} {
		path := filepath.Join(l.dataDir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func (l *Loader) loadCountry(path string, country solar.Country) (*table.Table, error) {
	raw, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}
	return buildTable(raw, country)
}

// buildTable converts raw string rows into typed columns. The Timestamp
// column parses to times; every other column parses to float64 with NaN for
// blanks and unparseable cells. When country is non-empty a constant Country
// label column is appended.
func buildTable(raw *RawData, country solar.Country) (*table.Table, error) {
	rows := len(raw.Rows)
	columns := make([]table.Column, 0, len(raw.Headers)+1)

	for j, header := range raw.Headers {
		if header == solar.TimestampColumn {
			times := make([]time.Time, rows)
			for i, row := range raw.Rows {
				times[i] = parseTimestamp(row[j])
			}
			columns = append(columns, table.TimeColumn(header, times))
			continue
		}

		values := make([]float64, rows)
		for i, row := range raw.Rows {
			values[i] = parseNumeric(row[j])
		}
		columns = append(columns, table.NumericColumn(header, values))
	}

	if country != "" {
		labels := make([]string, rows)
		for i := range labels {
			labels[i] = string(country)
		}
		columns = append(columns, table.LabelColumn(solar.CountryColumn, labels))
	}

	return table.New(columns...)
}

func parseNumeric(cell string) float64 {
	if cell == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func parseTimestamp(cell string) time.Time {
	if cell == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, cell); err == nil {
			return ts
		}
	}
	return time.Time{}
}
