// Package table provides the in-memory tabular dataset the dashboard
// computes over. A Table is a set of equal-length named columns; numeric
// cells use NaN as the missing sentinel, label cells use the empty string,
// and timestamp cells use the zero time. Operations never mutate their
// receiver.
package table

import (
	"fmt"
	"math"
	"time"

	"helioscope/internal/errors"
)

// Kind distinguishes how a column stores its values.
type Kind int

const (
	KindNumeric Kind = iota
	KindLabel
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindLabel:
		return "label"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Column is a single named column. Exactly one of the value slices is
// populated, selected by Kind.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
	Times   []time.Time
}

// NumericColumn builds a numeric column. NaN marks missing values.
func NumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: KindNumeric, Floats: values}
}

// LabelColumn builds a string label column. Empty strings mark missing values.
func LabelColumn(name string, values []string) Column {
	return Column{Name: name, Kind: KindLabel, Strings: values}
}

// TimeColumn builds a timestamp column. Zero times mark missing values.
func TimeColumn(name string, values []time.Time) Column {
	return Column{Name: name, Kind: KindTime, Times: values}
}

// Len returns the number of cells in the column.
func (c Column) Len() int {
	switch c.Kind {
	case KindNumeric:
		return len(c.Floats)
	case KindLabel:
		return len(c.Strings)
	case KindTime:
		return len(c.Times)
	default:
		return 0
	}
}

// MissingCount returns the number of missing cells in the column.
func (c Column) MissingCount() int {
	missing := 0
	switch c.Kind {
	case KindNumeric:
		for _, v := range c.Floats {
			if math.IsNaN(v) {
				missing++
			}
		}
	case KindLabel:
		for _, v := range c.Strings {
			if v == "" {
				missing++
			}
		}
	case KindTime:
		for _, v := range c.Times {
			if v.IsZero() {
				missing++
			}
		}
	}
	return missing
}

// MissingFraction returns the fraction of missing cells in [0,1].
// An empty column has fraction 0.
func (c Column) MissingFraction() float64 {
	n := c.Len()
	if n == 0 {
		return 0
	}
	return float64(c.MissingCount()) / float64(n)
}

// take returns a new column containing the cells at the given row indices.
func (c Column) take(idx []int) Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case KindNumeric:
		out.Floats = make([]float64, len(idx))
		for i, j := range idx {
			out.Floats[i] = c.Floats[j]
		}
	case KindLabel:
		out.Strings = make([]string, len(idx))
		for i, j := range idx {
			out.Strings[i] = c.Strings[j]
		}
	case KindTime:
		out.Times = make([]time.Time, len(idx))
		for i, j := range idx {
			out.Times[i] = c.Times[j]
		}
	}
	return out
}

// Table is an ordered collection of equal-length columns. Rows are
// independent measurement records with no uniqueness constraint.
type Table struct {
	columns []Column
	index   map[string]int
}

// New creates a table from the given columns, validating that names are
// unique and lengths agree.
func New(columns ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}
	rows := -1
	for _, col := range columns {
		if col.Name == "" {
			return nil, errors.InvalidInput("column name must not be empty")
		}
		if _, exists := t.index[col.Name]; exists {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate column name %q", col.Name))
		}
		if rows == -1 {
			rows = col.Len()
		} else if col.Len() != rows {
			return nil, errors.InvalidInput(fmt.Sprintf(
				"column %q has %d rows, expected %d", col.Name, col.Len(), rows))
		}
		t.index[col.Name] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNew creates a table and panics on invalid input.
// Use only in tests and development.
func MustNew(columns ...Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the row count of the table.
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return t.columns[0].Len()
}

// NumColumns returns the column count of the table.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Floats returns the values of a numeric column.
func (t *Table) Floats(name string) ([]float64, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("column %q", name))
	}
	if col.Kind != KindNumeric {
		return nil, errors.InvalidInput(fmt.Sprintf("column %q is %s, not numeric", name, col.Kind))
	}
	return col.Floats, nil
}

// Strings returns the values of a label column.
func (t *Table) Strings(name string) ([]string, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("column %q", name))
	}
	if col.Kind != KindLabel {
		return nil, errors.InvalidInput(fmt.Sprintf("column %q is %s, not a label", name, col.Kind))
	}
	return col.Strings, nil
}

// Times returns the values of a timestamp column.
func (t *Table) Times(name string) ([]time.Time, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("column %q", name))
	}
	if col.Kind != KindTime {
		return nil, errors.InvalidInput(fmt.Sprintf("column %q is %s, not time", name, col.Kind))
	}
	return col.Times, nil
}

// MissingFractions returns the per-column missing fraction, keyed by
// column name.
func (t *Table) MissingFractions() map[string]float64 {
	fractions := make(map[string]float64, len(t.columns))
	for _, col := range t.columns {
		fractions[col.Name] = col.MissingFraction()
	}
	return fractions
}

// DropHighMissing returns a new table without the columns whose missing
// fraction strictly exceeds threshold. Columns at exactly the threshold are
// retained. The receiver is not modified; kept columns share their backing
// slices, which is safe because tables are never mutated in place.
func (t *Table) DropHighMissing(threshold float64) (*Table, error) {
	if threshold < 0 || threshold > 1 || math.IsNaN(threshold) {
		return nil, errors.InvalidInput(fmt.Sprintf(
			"missing-data threshold must be in [0,1], got %v", threshold))
	}
	kept := make([]Column, 0, len(t.columns))
	for _, col := range t.columns {
		if col.MissingFraction() > threshold {
			continue
		}
		kept = append(kept, col)
	}
	return New(kept...)
}

// FilterRows returns a new table containing only the rows where the named
// label column equals value. Row order is preserved.
func (t *Table) FilterRows(labelColumn, value string) (*Table, error) {
	labels, err := t.Strings(labelColumn)
	if err != nil {
		return nil, err
	}
	var idx []int
	for i, v := range labels {
		if v == value {
			idx = append(idx, i)
		}
	}
	return t.takeRows(idx), nil
}

// takeRows builds a new table from the given row indices.
func (t *Table) takeRows(idx []int) *Table {
	cols := make([]Column, len(t.columns))
	for i, col := range t.columns {
		cols[i] = col.take(idx)
	}
	out, err := New(cols...)
	if err != nil {
		// Columns come from a valid table, so this cannot happen.
		panic(err)
	}
	return out
}

// Append concatenates other below the receiver into a new table. The column
// set is the union of both tables in first-appearance order; cells absent
// from one side are filled with the missing sentinel of the column's kind.
func (t *Table) Append(other *Table) (*Table, error) {
	names := t.ColumnNames()
	for _, name := range other.ColumnNames() {
		if !t.HasColumn(name) {
			names = append(names, name)
		}
	}

	topRows := t.NumRows()
	bottomRows := other.NumRows()
	cols := make([]Column, 0, len(names))
	for _, name := range names {
		top, inTop := t.Column(name)
		bottom, inBottom := other.Column(name)
		kind := top.Kind
		if !inTop {
			kind = bottom.Kind
		}
		if inTop && inBottom && top.Kind != bottom.Kind {
			return nil, errors.InvalidInput(fmt.Sprintf(
				"column %q is %s in one table and %s in the other", name, top.Kind, bottom.Kind))
		}
		cols = append(cols, concatColumn(name, kind, top, inTop, topRows, bottom, inBottom, bottomRows))
	}
	return New(cols...)
}

func concatColumn(name string, kind Kind, top Column, inTop bool, topRows int, bottom Column, inBottom bool, bottomRows int) Column {
	out := Column{Name: name, Kind: kind}
	switch kind {
	case KindNumeric:
		out.Floats = make([]float64, 0, topRows+bottomRows)
		out.Floats = append(out.Floats, numericOrFill(top, inTop, topRows)...)
		out.Floats = append(out.Floats, numericOrFill(bottom, inBottom, bottomRows)...)
	case KindLabel:
		out.Strings = make([]string, 0, topRows+bottomRows)
		out.Strings = append(out.Strings, labelOrFill(top, inTop, topRows)...)
		out.Strings = append(out.Strings, labelOrFill(bottom, inBottom, bottomRows)...)
	case KindTime:
		out.Times = make([]time.Time, 0, topRows+bottomRows)
		out.Times = append(out.Times, timeOrFill(top, inTop, topRows)...)
		out.Times = append(out.Times, timeOrFill(bottom, inBottom, bottomRows)...)
	}
	return out
}

func numericOrFill(col Column, present bool, rows int) []float64 {
	if present {
		return col.Floats
	}
	fill := make([]float64, rows)
	for i := range fill {
		fill[i] = math.NaN()
	}
	return fill
}

func labelOrFill(col Column, present bool, rows int) []string {
	if present {
		return col.Strings
	}
	return make([]string, rows)
}

func timeOrFill(col Column, present bool, rows int) []time.Time {
	if present {
		return col.Times
	}
	return make([]time.Time, rows)
}
