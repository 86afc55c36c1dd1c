package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helioscope/internal/errors"
)

func ts(day, hour, minute int) time.Time {
	return time.Date(2021, 8, day, hour, minute, 0, 0, time.UTC)
}

func TestParsePeriod(t *testing.T) {
	for _, name := range []string{"raw", "hourly", "daily", "monthly"} {
		p, err := ParsePeriod(name)
		require.NoError(t, err)
		assert.Equal(t, Period(name), p)
	}

	_, err := ParsePeriod("weekly")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestResampleDaily(t *testing.T) {
	times := []time.Time{ts(1, 8, 0), ts(1, 12, 0), ts(2, 8, 0)}
	values := []float64{100, 300, 50}

	points, err := Resample(times, values, PeriodDaily)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, ts(1, 0, 0), points[0].Time)
	assert.InDelta(t, 200, float64(points[0].Value), 1e-9)
	assert.Equal(t, ts(2, 0, 0), points[1].Time)
	assert.InDelta(t, 50, float64(points[1].Value), 1e-9)
}

func TestResampleHourlySkipsMissingInBucketMean(t *testing.T) {
	times := []time.Time{ts(1, 8, 0), ts(1, 8, 30), ts(1, 9, 0)}
	values := []float64{100, math.NaN(), 40}

	points, err := Resample(times, values, PeriodHourly)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.InDelta(t, 100, float64(points[0].Value), 1e-9)
	assert.InDelta(t, 40, float64(points[1].Value), 1e-9)
}

func TestResampleAllMissingBucketIsNaN(t *testing.T) {
	times := []time.Time{ts(1, 8, 0), ts(1, 8, 30)}
	values := []float64{math.NaN(), math.NaN()}

	points, err := Resample(times, values, PeriodHourly)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.True(t, math.IsNaN(float64(points[0].Value)))
}

func TestResampleMonthly(t *testing.T) {
	times := []time.Time{
		time.Date(2021, 8, 5, 10, 0, 0, 0, time.UTC),
		time.Date(2021, 8, 20, 10, 0, 0, 0, time.UTC),
		time.Date(2021, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	values := []float64{10, 30, 99}

	points, err := Resample(times, values, PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC), points[0].Time)
	assert.InDelta(t, 20, float64(points[0].Value), 1e-9)
}

func TestResampleRawSortsAndDropsUnstamped(t *testing.T) {
	times := []time.Time{ts(2, 0, 0), {}, ts(1, 0, 0)}
	values := []float64{2, 99, 1}

	points, err := Resample(times, values, PeriodRaw)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 1.0, float64(points[0].Value))
	assert.Equal(t, 2.0, float64(points[1].Value))
}

func TestResampleLengthMismatch(t *testing.T) {
	_, err := Resample([]time.Time{ts(1, 0, 0)}, []float64{1, 2}, PeriodDaily)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
