package ui

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"

	"helioscope/domain/solar"
	"helioscope/domain/table"
	"helioscope/internal/analysis"
	"helioscope/internal/errors"
)

// metricOption is the selector entry for one metric.
type metricOption struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Unit  string `json:"unit"`
}

// countrySummary is one summary card in the comparison view.
type countrySummary struct {
	Country string `json:"country"`
	analysis.MetricSummary
}

// summaryResponse is the payload of /api/summary.
type summaryResponse struct {
	Metric    string           `json:"metric"`
	Unit      string           `json:"unit"`
	Countries []countrySummary `json:"countries"`
}

// rankingsResponse is the payload of /api/rankings.
type rankingsResponse struct {
	Metric         string           `json:"metric"`
	Unit           string           `json:"unit"`
	Ranking        analysis.Ranking `json:"ranking"`
	Recommendation string           `json:"recommendation"`
}

// handleIndex serves the dashboard page.
func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Metrics   []metricOption
		Countries []string
		HasData   bool
		Rows      int
		LoadedAt  string
		LoadError string
	}{
		Metrics: metricOptions(),
	}

	if sess, err := a.sessions.Current(); err == nil {
		data.HasData = true
		data.Rows = sess.Dataset.NumRows()
		data.LoadedAt = sess.LoadedAt.Format(time.RFC1123)
		data.Countries = datasetCountries(sess.Dataset)
	} else {
		data.LoadError = "Could not load data. Make sure the cleaned country files exist in the data directory."
	}

	a.renderTemplate(w, "index.html", data)
}

// handleMetricsList returns the known metrics with labels and units.
func (a *App) handleMetricsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metricOptions())
}

func metricOptions() []metricOption {
	options := make([]metricOption, 0, len(solar.Metrics()))
	for _, m := range solar.Metrics() {
		options = append(options, metricOption{Name: m.String(), Label: m.Label(), Unit: m.Unit()})
	}
	return options
}

// handleSummary returns per-country summary statistics for one metric.
// HTMX requests get the rendered summary cards instead of JSON.
func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		a.handleFragmentSummary(w, r)
		return
	}
	resp, err := a.buildSummary(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFragmentSummary renders the comparison summary cards.
func (a *App) handleFragmentSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := a.buildSummary(r)
	if err != nil {
		writeErrorFragment(w, err)
		return
	}
	a.renderTemplate(w, "summary_cards.html", resp)
}

func (a *App) buildSummary(r *http.Request) (*summaryResponse, error) {
	sess, err := a.sessions.Current()
	if err != nil {
		return nil, err
	}
	metric, err := requestedMetric(r)
	if err != nil {
		return nil, err
	}

	countries := datasetCountries(sess.Dataset)
	if raw := r.URL.Query().Get("countries"); raw != "" {
		countries = nil
		for _, name := range strings.Split(raw, ",") {
			country, err := solar.ParseCountry(strings.TrimSpace(name))
			if err != nil {
				return nil, errors.InvalidInput(err.Error())
			}
			countries = append(countries, country.String())
		}
	}
	if len(countries) == 0 {
		return nil, errors.InvalidInput("select at least one country")
	}

	resp := &summaryResponse{Metric: metric.String(), Unit: metric.Unit()}
	for _, country := range countries {
		sub, err := sess.Dataset.FilterRows(solar.CountryColumn, country)
		if err != nil {
			return nil, err
		}
		if sub.NumRows() == 0 {
			continue
		}
		summary, err := analysis.CalculateMetrics(sub, metric.String())
		if err != nil {
			return nil, err
		}
		resp.Countries = append(resp.Countries, countrySummary{Country: country, MetricSummary: summary})
	}
	return resp, nil
}

// handleRankings returns the ranked country comparison for one metric.
func (a *App) handleRankings(w http.ResponseWriter, r *http.Request) {
	if isHTMX(r) {
		a.handleFragmentRankings(w, r)
		return
	}
	resp, err := a.buildRankings(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFragmentRankings renders the rankings table.
func (a *App) handleFragmentRankings(w http.ResponseWriter, r *http.Request) {
	resp, err := a.buildRankings(r)
	if err != nil {
		writeErrorFragment(w, err)
		return
	}
	a.renderTemplate(w, "rankings_table.html", resp)
}

func (a *App) buildRankings(r *http.Request) (*rankingsResponse, error) {
	sess, err := a.sessions.Current()
	if err != nil {
		return nil, err
	}
	metric, err := requestedMetric(r)
	if err != nil {
		return nil, err
	}

	ranking, err := analysis.RankGroups(sess.Dataset, solar.CountryColumn, metric.String())
	if err != nil {
		return nil, err
	}

	return &rankingsResponse{
		Metric:  metric.String(),
		Unit:    metric.Unit(),
		Ranking: *ranking,
		Recommendation: fmt.Sprintf(
			"Based on %s data, %s shows the best combination of high solar potential and stability for solar farm development.",
			metric, ranking.BestOverall),
	}, nil
}

// handleTimeseries returns a resampled series for one country and metric.
func (a *App) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	metric, err := requestedMetric(r)
	if err != nil {
		writeError(w, err)
		return
	}
	country, err := solar.ParseCountry(r.URL.Query().Get("country"))
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	periodName := r.URL.Query().Get("period")
	if periodName == "" {
		periodName = string(analysis.PeriodDaily)
	}
	period, err := analysis.ParsePeriod(periodName)
	if err != nil {
		writeError(w, err)
		return
	}

	if !sess.Dataset.HasColumn(solar.TimestampColumn) {
		writeError(w, errors.InvalidInput("timestamp data not available for time series analysis"))
		return
	}

	sub, err := sess.Dataset.FilterRows(solar.CountryColumn, country.String())
	if err != nil {
		writeError(w, err)
		return
	}
	times, err := sub.Times(solar.TimestampColumn)
	if err != nil {
		writeError(w, err)
		return
	}
	values, err := sub.Floats(metric.String())
	if err != nil {
		writeError(w, err)
		return
	}

	points, err := analysis.Resample(times, values, period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"country": country.String(),
		"metric":  metric.String(),
		"unit":    metric.Unit(),
		"period":  period,
		"points":  points,
	})
}

// handleCorrelations returns the correlation matrix over the metric columns
// present in the dataset.
func (a *App) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Current()
	if err != nil {
		writeError(w, err)
		return
	}

	var columns []string
	for _, m := range solar.Metrics() {
		if sess.Dataset.HasColumn(m.String()) {
			columns = append(columns, m.String())
		}
	}

	matrix, err := analysis.Correlations(sess.Dataset, columns)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matrix)
}

// handleScatter returns paired points per country for two metrics.
func (a *App) handleScatter(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Current()
	if err != nil {
		writeError(w, err)
		return
	}
	x, err := solar.ParseMetric(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}
	y, err := solar.ParseMetric(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, errors.InvalidInput(err.Error()))
		return
	}

	series, err := analysis.ScatterPairs(sess.Dataset, solar.CountryColumn, x.String(), y.String())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"x":      x.String(),
		"x_unit": x.Unit(),
		"y":      y.String(),
		"y_unit": y.Unit(),
		"series": series,
	})
}

// handleAbout renders the embedded methodology note as HTML.
func (a *App) handleAbout(w http.ResponseWriter, r *http.Request) {
	src, err := embeddedFiles.ReadFile("about.md")
	if err != nil {
		log.Printf("[About] embedded about.md missing: %v", err)
		writeError(w, errors.InternalError("methodology note unavailable"))
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write(markdown.ToHTML(src, nil, nil))
}

// handleReload rebuilds the session from the source files.
func (a *App) handleReload(w http.ResponseWriter, r *http.Request) {
	sess, err := a.sessions.Reload()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"rows":       sess.Dataset.NumRows(),
		"columns":    sess.Dataset.NumColumns(),
		"loaded_at":  sess.LoadedAt,
	})
}

// requestedMetric validates the metric query parameter.
func requestedMetric(r *http.Request) (solar.Metric, error) {
	name := r.URL.Query().Get("metric")
	if name == "" {
		name = solar.MetricGHI.String()
	}
	metric, err := solar.ParseMetric(name)
	if err != nil {
		return "", errors.InvalidInput(err.Error())
	}
	return metric, nil
}

// datasetCountries lists the distinct countries in first-appearance order.
func datasetCountries(t *table.Table) []string {
	labels, err := t.Strings(solar.CountryColumn)
	if err != nil {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, label := range labels {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

// writeError maps coded application errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeNoSources:
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "code": code})
}

// writeErrorFragment writes an inline error block for HTMX targets.
func writeErrorFragment(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/html")
	status := http.StatusBadRequest
	if errors.GetCode(err) == errors.CodeNoSources {
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="error">%s</div>`, err.Error())
}
