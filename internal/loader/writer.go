package loader

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"

	"helioscope/domain/table"
	"helioscope/internal/errors"
)

// timestampOutputLayout is the canonical layout written back to disk.
const timestampOutputLayout = "2006-01-02 15:04:05"

// WriteCSV writes a table to a CSV file. Missing cells are written as empty
// strings, so a written file round-trips through the loader.
func WriteCSV(t *table.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	names := t.ColumnNames()
	if err := writer.Write(names); err != nil {
		return errors.Wrapf(err, "failed to write header to %s", path)
	}

	columns := make([]table.Column, len(names))
	for i, name := range names {
		col, _ := t.Column(name)
		columns[i] = col
	}

	record := make([]string, len(columns))
	for row := 0; row < t.NumRows(); row++ {
		for i, col := range columns {
			record[i] = formatCell(col, row)
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write row %d to %s", row, path)
		}
	}
	return writer.Error()
}

func formatCell(col table.Column, row int) string {
	switch col.Kind {
	case table.KindNumeric:
		v := col.Floats[row]
		if math.IsNaN(v) {
			return ""
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case table.KindLabel:
		return col.Strings[row]
	case table.KindTime:
		ts := col.Times[row]
		if ts.IsZero() {
			return ""
		}
		return ts.Format(timestampOutputLayout)
	default:
		return ""
	}
}
