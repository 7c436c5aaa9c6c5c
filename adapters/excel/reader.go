package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RawRow is one spreadsheet row keyed by lower-cased header name.
type RawRow map[string]string

// TableData is a parsed sheet: ordered headers plus rows.
type TableData struct {
	Headers []string
	Rows    []RawRow
}

// DataReader reads tabular daily-log submissions from .xlsx or .csv files.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a reader; the format is inferred from the extension.
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData parses the file into headers and rows.
func (r *DataReader) ReadData() (*TableData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("input file not found: %s", r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSV()
	default:
		return r.readExcel()
	}
}

func (r *DataReader) readExcel() (*TableData, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return buildTable(rows)
}

func (r *DataReader) readCSV() (*TableData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv file: %w", err)
	}
	return buildTable(rows)
}

func buildTable(rows [][]string) (*TableData, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("input must have a header row and at least one data row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	data := &TableData{Headers: headers}
	for _, raw := range rows[1:] {
		row := make(RawRow, len(headers))
		empty := true
		for i, h := range headers {
			if i < len(raw) {
				v := strings.TrimSpace(raw[i])
				row[h] = v
				if v != "" {
					empty = false
				}
			}
		}
		if !empty {
			data.Rows = append(data.Rows, row)
		}
	}
	return data, nil
}
