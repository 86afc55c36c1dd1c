package ui

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helioscope/domain/table"
	"helioscope/internal/config"
	"helioscope/internal/session"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0"},
		Data:   config.DataConfig{Dir: "data", MissingThreshold: 0.05},
	}
}

func testDataset() *table.Table {
	day := func(d, h int) time.Time {
		return time.Date(2021, 8, d, h, 0, 0, 0, time.UTC)
	}
	return table.MustNew(
		table.TimeColumn("Timestamp", []time.Time{
			day(1, 8), day(1, 12), day(2, 8),
			day(1, 8), day(1, 12), day(2, 8),
		}),
		table.NumericColumn("GHI", []float64{200, 400, 300, 180, math.NaN(), 220}),
		table.NumericColumn("Tamb", []float64{25, 30, 27, 24, 26, 25}),
		table.LabelColumn("Country", []string{
			"Benin", "Benin", "Benin",
			"Togo", "Togo", "Togo",
		}),
	)
}

func newTestApp(t *testing.T, load session.LoadFunc) *App {
	t.Helper()
	sessions := session.NewManager(load)
	if load != nil {
		_, err := sessions.Reload()
		require.NoError(t, err)
	}
	app, err := NewApp(testConfig(), sessions)
	require.NoError(t, err)
	return app
}

func loadedApp(t *testing.T) *App {
	return newTestApp(t, func() (*table.Table, error) {
		return testDataset(), nil
	})
}

func emptyApp(t *testing.T) *App {
	return newTestApp(t, nil)
}

func doJSON(t *testing.T, app *App, method, target string, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestIndexPage(t *testing.T) {
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Benin")
}

func TestIndexPageWithoutData(t *testing.T) {
	rec := doJSON(t, emptyApp(t), http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not load data")
}

func TestMetricsList(t *testing.T) {
	var options []map[string]string
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/metrics", &options)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, options, 6)
	assert.Equal(t, "GHI", options[0]["name"])
	assert.Equal(t, "W/m²", options[0]["unit"])
}

func TestSummaryDefaultsToGHI(t *testing.T) {
	var resp struct {
		Metric    string `json:"metric"`
		Unit      string `json:"unit"`
		Countries []struct {
			Country string   `json:"country"`
			Mean    *float64 `json:"mean"`
			Count   int      `json:"count"`
		} `json:"countries"`
	}
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/summary", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "GHI", resp.Metric)
	require.Len(t, resp.Countries, 2)

	benin := resp.Countries[0]
	assert.Equal(t, "Benin", benin.Country)
	require.NotNil(t, benin.Mean)
	assert.InDelta(t, 300, *benin.Mean, 1e-9)
	assert.Equal(t, 3, benin.Count)

	// Togo has a missing GHI row: excluded from the mean, included in count.
	togo := resp.Countries[1]
	assert.InDelta(t, 200, *togo.Mean, 1e-9)
	assert.Equal(t, 3, togo.Count)
}

func TestSummaryCountryFilter(t *testing.T) {
	var resp struct {
		Countries []struct {
			Country string `json:"country"`
		} `json:"countries"`
	}
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/summary?countries=Togo", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Countries, 1)
	assert.Equal(t, "Togo", resp.Countries[0].Country)
}

func TestSummaryRejectsUnknownMetric(t *testing.T) {
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/summary?metric=Sunshine", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")
}

func TestSummaryRejectsUnknownCountry(t *testing.T) {
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/summary?countries=Ghana", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryWithoutData(t *testing.T) {
	rec := doJSON(t, emptyApp(t), http.MethodGet, "/api/summary", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_SOURCES")
}

func TestSummaryHTMXReturnsFragment(t *testing.T) {
	app := loadedApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Benin")
}

func TestRankings(t *testing.T) {
	var resp struct {
		Metric  string `json:"metric"`
		Ranking struct {
			Groups []struct {
				Group         string  `json:"group"`
				PotentialRank int     `json:"potential_rank"`
				StabilityRank int     `json:"stability_rank"`
				OverallScore  float64 `json:"overall_score"`
			} `json:"groups"`
			BestOverall string `json:"best_overall"`
		} `json:"ranking"`
		Recommendation string `json:"recommendation"`
	}
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/rankings?metric=GHI", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Ranking.Groups, 2)
	assert.NotEmpty(t, resp.Ranking.BestOverall)
	assert.Contains(t, resp.Recommendation, resp.Ranking.BestOverall)
}

func TestRankingsFragment(t *testing.T) {
	app := loadedApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/fragments/rankings?metric=GHI", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Recommendation")
}

func TestTimeseries(t *testing.T) {
	var resp struct {
		Country string `json:"country"`
		Period  string `json:"period"`
		Points  []struct {
			Value *float64 `json:"value"`
		} `json:"points"`
	}
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/timeseries?country=Benin&metric=GHI", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Benin", resp.Country)
	assert.Equal(t, "daily", resp.Period)
	// Two distinct days in the fixture.
	require.Len(t, resp.Points, 2)
	require.NotNil(t, resp.Points[0].Value)
	assert.InDelta(t, 300, *resp.Points[0].Value, 1e-9)
}

func TestTimeseriesRejectsUnknownCountry(t *testing.T) {
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/timeseries?country=Ghana&metric=GHI", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimeseriesRejectsUnknownPeriod(t *testing.T) {
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/timeseries?country=Benin&metric=GHI&period=weekly", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorrelations(t *testing.T) {
	var resp struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/correlations", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	// Only the metric columns present in the fixture.
	assert.Equal(t, []string{"GHI", "Tamb"}, resp.Columns)
	require.Len(t, resp.Values, 2)
	require.NotNil(t, resp.Values[0][0])
	assert.Equal(t, 1.0, *resp.Values[0][0])
}

func TestScatter(t *testing.T) {
	var resp struct {
		X      string `json:"x"`
		Y      string `json:"y"`
		Series []struct {
			Group  string `json:"group"`
			Points []struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"points"`
		} `json:"series"`
	}
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/scatter?x=GHI&y=Tamb", &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, resp.Series, 2)
	assert.Equal(t, "Benin", resp.Series[0].Group)
	assert.Len(t, resp.Series[0].Points, 3)
	// Togo's NaN GHI row is dropped from the pairs.
	assert.Len(t, resp.Series[1].Points, 2)
}

func TestScatterRejectsUnknownMetric(t *testing.T) {
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/scatter?x=GHI&y=Altitude", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAbout(t *testing.T) {
	rec := doJSON(t, loadedApp(t), http.MethodGet, "/api/about", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.True(t, strings.Contains(rec.Body.String(), "<h1") || strings.Contains(rec.Body.String(), "<h2"),
		"markdown should render to HTML headings")
}

func TestReload(t *testing.T) {
	app := loadedApp(t)

	var first struct {
		SessionID string `json:"session_id"`
		Rows      int    `json:"rows"`
	}
	rec := doJSON(t, app, http.MethodPost, "/api/reload", &first)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, 6, first.Rows)

	var second struct {
		SessionID string `json:"session_id"`
	}
	rec = doJSON(t, app, http.MethodPost, "/api/reload", &second)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}
