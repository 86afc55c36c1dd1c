package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"helioscope/internal/errors"
)

// Period selects the time-aggregation level for a resampled series.
type Period string

const (
	PeriodRaw     Period = "raw"
	PeriodHourly  Period = "hourly"
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod validates a resampling period name at the boundary.
func ParsePeriod(name string) (Period, error) {
	switch Period(name) {
	case PeriodRaw, PeriodHourly, PeriodDaily, PeriodMonthly:
		return Period(name), nil
	default:
		return "", errors.InvalidInput(fmt.Sprintf("unknown resampling period %q", name))
	}
}

// TimePoint is one observation of a resampled series. Value is NaN (JSON
// null) when every observation in the bucket was missing, which renders as a
// gap in the chart.
type TimePoint struct {
	Time  time.Time `json:"time"`
	Value Float     `json:"value"`
}

// Resample aggregates a timestamped series to the requested period, taking
// the mean of the non-missing values in each bucket. Rows without a
// timestamp are dropped. The result is sorted by time; only buckets with at
// least one row appear.
func Resample(times []time.Time, values []float64, period Period) ([]TimePoint, error) {
	if len(times) != len(values) {
		return nil, errors.InvalidInput(fmt.Sprintf(
			"timestamp and value columns disagree: %d vs %d rows", len(times), len(values)))
	}

	if period == PeriodRaw {
		points := make([]TimePoint, 0, len(times))
		for i, ts := range times {
			if ts.IsZero() {
				continue
			}
			points = append(points, TimePoint{Time: ts, Value: Float(values[i])})
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
		return points, nil
	}

	buckets := make(map[time.Time][]float64)
	for i, ts := range times {
		if ts.IsZero() {
			continue
		}
		key := truncateToPeriod(ts, period)
		buckets[key] = append(buckets[key], values[i])
	}

	points := make([]TimePoint, 0, len(buckets))
	for key, bucket := range buckets {
		points = append(points, TimePoint{Time: key, Value: Float(bucketMean(bucket))})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points, nil
}

func truncateToPeriod(ts time.Time, period Period) time.Time {
	switch period {
	case PeriodHourly:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), 0, 0, 0, ts.Location())
	case PeriodDaily:
		return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	case PeriodMonthly:
		return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, ts.Location())
	default:
		return ts
	}
}

func bucketMean(values []float64) float64 {
	observed := dropMissing(values)
	if len(observed) == 0 {
		return math.NaN()
	}
	mean, err := stats.Mean(observed)
	if err != nil {
		return math.NaN()
	}
	return mean
}
