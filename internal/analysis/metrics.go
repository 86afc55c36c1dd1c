// Package analysis implements the dashboard's statistical reductions:
// per-metric summary statistics, country rankings, correlation matrices and
// time-series resampling. All functions are pure computations over an
// in-memory table; malformed input fails immediately with a coded error.
package analysis

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"helioscope/domain/table"
	"helioscope/internal/errors"
)

// Float is a float64 that survives JSON marshalling when non-finite.
// encoding/json rejects NaN and infinities outright; we emit null for NaN
// and the strings "inf"/"-inf" for infinities instead.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte("null"), nil
	case math.IsInf(v, 1):
		return json.Marshal("inf")
	case math.IsInf(v, -1):
		return json.Marshal("-inf")
	default:
		return json.Marshal(v)
	}
}

// MetricSummary holds the descriptive statistics for one metric column.
// Count is the total row count of the table, not the non-null count of the
// metric column: a row with a missing metric value still counts as a record.
type MetricSummary struct {
	Mean   Float `json:"mean"`
	Median Float `json:"median"`
	StdDev Float `json:"std"`
	Count  int   `json:"count"`
}

// CalculateMetrics computes mean, median and sample standard deviation over
// the non-missing values of the named column, plus the table's total row
// count. It fails if the column is absent or the table is empty.
func CalculateMetrics(t *table.Table, column string) (MetricSummary, error) {
	if t.NumRows() == 0 {
		return MetricSummary{}, errors.InvalidInput("cannot summarize an empty dataset")
	}
	values, err := t.Floats(column)
	if err != nil {
		return MetricSummary{}, err
	}

	observed := dropMissing(values)
	if len(observed) == 0 {
		// A fully missing column still has a record count.
		nan := Float(math.NaN())
		return MetricSummary{Mean: nan, Median: nan, StdDev: nan, Count: t.NumRows()}, nil
	}

	mean, err := stats.Mean(observed)
	if err != nil {
		return MetricSummary{}, errors.Wrapf(err, "mean of column %q", column)
	}
	median, err := stats.Median(observed)
	if err != nil {
		return MetricSummary{}, errors.Wrapf(err, "median of column %q", column)
	}
	stdDev := sampleStdDev(observed)

	return MetricSummary{
		Mean:   Float(mean),
		Median: Float(median),
		StdDev: Float(stdDev),
		Count:  t.NumRows(),
	}, nil
}

// dropMissing returns the non-NaN values of a numeric column.
func dropMissing(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// sampleStdDev computes the sample (n-1) standard deviation. A single
// observation has no defined sample deviation and yields NaN.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return math.NaN()
	}
	return sd
}

// requireColumn returns a NotFound error naming the column when it is absent.
func requireColumn(t *table.Table, name string) error {
	if !t.HasColumn(name) {
		return errors.NotFound(fmt.Sprintf("column %q", name))
	}
	return nil
}
