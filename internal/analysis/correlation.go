package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"helioscope/domain/table"
	"helioscope/internal/errors"
)

// CorrelationMatrix is a symmetric Pearson correlation matrix over the named
// columns. Cells that cannot be computed (fewer than two complete pairs, or
// a constant column) are NaN and marshal as JSON null.
type CorrelationMatrix struct {
	Columns []string  `json:"columns"`
	Values  [][]Float `json:"values"`
}

// Correlations computes pairwise-complete Pearson correlations between the
// given numeric columns: for each pair, only rows where both values are
// present contribute.
func Correlations(t *table.Table, columns []string) (*CorrelationMatrix, error) {
	if len(columns) == 0 {
		return nil, errors.InvalidInput("no columns given for correlation")
	}
	series := make([][]float64, len(columns))
	for i, name := range columns {
		values, err := t.Floats(name)
		if err != nil {
			return nil, err
		}
		series[i] = values
	}

	matrix := &CorrelationMatrix{
		Columns: columns,
		Values:  make([][]Float, len(columns)),
	}
	for i := range columns {
		matrix.Values[i] = make([]Float, len(columns))
		for j := range columns {
			if j < i {
				matrix.Values[i][j] = matrix.Values[j][i]
				continue
			}
			if i == j {
				matrix.Values[i][j] = 1
				continue
			}
			matrix.Values[i][j] = Float(pairwiseCorrelation(series[i], series[j]))
		}
	}
	return matrix, nil
}

// pairwiseCorrelation computes the Pearson correlation over the rows where
// both series have a value.
func pairwiseCorrelation(xs, ys []float64) float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	var px, py []float64
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	if len(px) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(px, py, nil)
	return r
}
