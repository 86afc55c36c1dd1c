package loader

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"helioscope/internal/errors"
)

// RawData is the unparsed content of one source file: a header row and the
// data rows as trimmed strings.
type RawData struct {
	Headers []string
	Rows    [][]string
}

// DataReader reads one flat measurement file, CSV or XLSX.
type DataReader struct {
	filePath string
	fileType string // "csv" or "xlsx"
}

// NewDataReader creates a reader for the given file, picking the format from
// the extension.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xls" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the file into raw rows.
func (r *DataReader) ReadData() (*RawData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("source file %s", r.filePath))
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	case "xlsx":
		return r.readXLSX()
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
}

func (r *DataReader) readCSV() (*RawData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to open %s", r.filePath), err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	start := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to read %s", r.filePath), err)
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

func (r *DataReader) readXLSX() (*RawData, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to open %s", r.filePath), err)
	}
	defer f.Close()

	// First sheet, whatever its name.
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError(fmt.Sprintf("%s has no sheets", r.filePath), nil)
	}
	start := time.Now()
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}
	log.Printf("[DataReader] XLSX sheet read in %.2fms (%d rows)",
		float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// processRows splits raw rows into header and data, trimming whitespace.
func (r *DataReader) processRows(rows [][]string) (*RawData, error) {
	if len(rows) < 2 {
		return nil, errors.ParseError(fmt.Sprintf(
			"%s must have at least a header row and one data row", r.filePath), nil)
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		for j := range headers {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
		}
		dataRows = append(dataRows, cells)
	}

	log.Printf("[DataReader] %s processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &RawData{Headers: headers, Rows: dataRows}, nil
}
