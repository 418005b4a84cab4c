package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"bootstat/domain/core"
)

// DataReader reads named numeric series from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	data     *TableData
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*TableData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ListColumns returns the column headers available in the source
func (r *DataReader) ListColumns() ([]string, error) {
	data, err := r.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), data.Headers...), nil
}

// ReadSeries parses the named columns as aligned float64 series. Rows where
// every requested cell is blank are skipped; a row with a partial blank or
// a non-numeric cell is an error, because dropping it silently would
// misalign the series.
func (r *DataReader) ReadSeries(names ...string) (map[string][]float64, error) {
	if len(names) == 0 {
		return nil, core.ErrEmptyInput
	}

	data, err := r.ensureLoaded()
	if err != nil {
		return nil, err
	}

	available := make(map[string]bool, len(data.Headers))
	for _, header := range data.Headers {
		available[header] = true
	}
	for _, name := range names {
		if !available[name] {
			return nil, fmt.Errorf("column %q not in %s: %w", name, r.filePath, core.ErrSeriesNotFound)
		}
	}

	series := make(map[string][]float64, len(names))
	for _, name := range names {
		series[name] = []float64{}
	}

	for i, row := range data.Rows {
		blanks := 0
		for _, name := range names {
			if strings.TrimSpace(row[name]) == "" {
				blanks++
			}
		}
		if blanks == len(names) {
			continue
		}
		if blanks > 0 {
			return nil, fmt.Errorf("row %d: blank cell would misalign the requested series", i+2)
		}

		for _, name := range names {
			value, err := strconv.ParseFloat(strings.TrimSpace(row[name]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: cannot parse %q as a number", i+2, name, row[name])
			}
			series[name] = append(series[name], value)
		}
	}

	if len(series[names[0]]) == 0 {
		return nil, fmt.Errorf("no data rows for columns %v: %w", names, core.ErrEmptyInput)
	}

	return series, nil
}

func (r *DataReader) ensureLoaded() (*TableData, error) {
	if r.data != nil {
		return r.data, nil
	}
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	r.data = data
	return data, nil
}

// readExcelData reads Excel data from Sheet1 into structured format
func (r *DataReader) readExcelData() (*TableData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()
	fileOpenTime := time.Since(startTime)
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(fileOpenTime.Nanoseconds())/1e6)

	// Always use Sheet1
	readStart := time.Now()
	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	readTime := time.Since(readStart)
	log.Printf("[DataReader] Sheet1 read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*TableData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	readTime := time.Since(readStart)
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(readTime.Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into TableData format
func (r *DataReader) processRows(rows [][]string) (*TableData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	var dataRows []RawRowData
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(RawRowData)

		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}

		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &TableData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}
