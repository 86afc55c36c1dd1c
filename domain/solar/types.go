// Package solar defines the measurement vocabulary shared across the
// dashboard: the known metric identifiers with their units and labels, and
// the countries the comparison covers.
package solar

import (
	"fmt"
)

// Metric identifies a measurement column in the combined dataset.
type Metric string

const (
	MetricGHI  Metric = "GHI"  // Global Horizontal Irradiance
	MetricDNI  Metric = "DNI"  // Direct Normal Irradiance
	MetricDHI  Metric = "DHI"  // Diffuse Horizontal Irradiance
	MetricTamb Metric = "Tamb" // Ambient temperature
	MetricWS   Metric = "WS"   // Wind speed
	MetricRH   Metric = "RH"   // Relative humidity
)

// metricInfo carries display metadata for a metric.
type metricInfo struct {
	Label string
	Unit  string
}

var metricTable = map[Metric]metricInfo{
	MetricGHI:  {Label: "Global Horizontal Irradiance", Unit: "W/m²"},
	MetricDNI:  {Label: "Direct Normal Irradiance", Unit: "W/m²"},
	MetricDHI:  {Label: "Diffuse Horizontal Irradiance", Unit: "W/m²"},
	MetricTamb: {Label: "Ambient Temperature", Unit: "°C"},
	MetricWS:   {Label: "Wind Speed", Unit: "m/s"},
	MetricRH:   {Label: "Relative Humidity", Unit: "%"},
}

// Metrics returns the known metrics in display order.
func Metrics() []Metric {
	return []Metric{MetricGHI, MetricDNI, MetricDHI, MetricTamb, MetricWS, MetricRH}
}

// IrradianceMetrics returns the three irradiance metrics used by the
// country comparison view.
func IrradianceMetrics() []Metric {
	return []Metric{MetricGHI, MetricDNI, MetricDHI}
}

// ParseMetric validates a metric name at the boundary. Unknown names are
// rejected rather than passed through as raw column lookups.
func ParseMetric(name string) (Metric, error) {
	m := Metric(name)
	if _, ok := metricTable[m]; !ok {
		return "", fmt.Errorf("unknown metric %q", name)
	}
	return m, nil
}

// Label returns the human-readable name of the metric.
func (m Metric) Label() string {
	if info, ok := metricTable[m]; ok {
		return info.Label
	}
	return string(m)
}

// Unit returns the display unit of the metric, empty if unknown.
func (m Metric) Unit() string {
	if info, ok := metricTable[m]; ok {
		return info.Unit
	}
	return ""
}

func (m Metric) String() string {
	return string(m)
}

// Country identifies one of the measurement sites.
type Country string

const (
	CountryBenin       Country = "Benin"
	CountrySierraLeone Country = "Sierra Leone"
	CountryTogo        Country = "Togo"
)

// Countries returns the known countries in canonical load order.
func Countries() []Country {
	return []Country{CountryBenin, CountrySierraLeone, CountryTogo}
}

// ParseCountry validates a country name at the boundary.
func ParseCountry(name string) (Country, error) {
	for _, c := range Countries() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown country %q", name)
}

func (c Country) String() string {
	return string(c)
}

// CountryColumn is the label column the loader injects into every source
// table, one constant value per file.
const CountryColumn = "Country"

// TimestampColumn is the expected name of the measurement time column.
const TimestampColumn = "Timestamp"
