package analysis

import (
	"math"

	"helioscope/domain/table"
)

// ScatterPoint is one paired observation for the correlation scatter view.
type ScatterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScatterSeries holds the paired points for one group (country).
type ScatterSeries struct {
	Group  string         `json:"group"`
	Points []ScatterPoint `json:"points"`
}

// maxScatterPoints caps each series so the browser is not handed hundreds of
// thousands of points for a year of minute-level data.
const maxScatterPoints = 2000

// ScatterPairs extracts (x, y) pairs per group, keeping only rows where both
// metrics are present. Oversized series are thinned with stratified sampling
// so the shape of the full series is preserved.
func ScatterPairs(t *table.Table, groupKey, xColumn, yColumn string) ([]ScatterSeries, error) {
	labels, err := t.Strings(groupKey)
	if err != nil {
		return nil, err
	}
	xs, err := t.Floats(xColumn)
	if err != nil {
		return nil, err
	}
	ys, err := t.Floats(yColumn)
	if err != nil {
		return nil, err
	}

	var order []string
	points := make(map[string][]ScatterPoint)
	for i, label := range labels {
		if label == "" || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		if _, seen := points[label]; !seen {
			order = append(order, label)
		}
		points[label] = append(points[label], ScatterPoint{X: xs[i], Y: ys[i]})
	}

	series := make([]ScatterSeries, 0, len(order))
	for _, group := range order {
		series = append(series, ScatterSeries{
			Group:  group,
			Points: samplePoints(points[group], maxScatterPoints),
		})
	}
	return series, nil
}

// samplePoints thins a series to at most maxSamples points, taking samples
// evenly distributed across the series rather than truncating the tail.
func samplePoints(points []ScatterPoint, maxSamples int) []ScatterPoint {
	total := len(points)
	if total <= maxSamples {
		return points
	}

	sampled := make([]ScatterPoint, 0, maxSamples)
	sampled = append(sampled, points[0])
	step := float64(total-1) / float64(maxSamples-1)
	for i := 1; i < maxSamples; i++ {
		idx := int(float64(i) * step)
		if idx < total && idx != 0 {
			sampled = append(sampled, points[idx])
		}
	}
	return sampled
}
