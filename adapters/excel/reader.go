package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"golens/internal"
	"golens/ports"
)

// DataReader loads tabular datasets from Excel or CSV files into the numeric
// row-major form the engine consumes. Non-numeric cells fail the load: type
// coercion policy beyond float parsing is out of scope here.
type DataReader struct {
	log *internal.Logger
}

// NewDataReader creates a dataset reader.
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{log: logger.Named("dataset")}
}

// ReadDataset reads a dataset from path, dispatching on the file extension.
func (r *DataReader) ReadDataset(path string) (*ports.Dataset, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("dataset file not found: %s", path)
	}

	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = r.readCSVRows(path)
	case ".xlsx":
		rows, err = r.readExcelRows(path)
	default:
		return nil, fmt.Errorf("unsupported dataset file type: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("dataset must have a header row and at least one data row")
	}
	return r.parseRows(rows)
}

// readExcelRows reads Sheet1 of an xlsx workbook.
func (r *DataReader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		return nil, fmt.Errorf("failed to read Sheet1: %w", err)
	}
	r.log.Debug("read %d rows from %s", len(rows), path)
	return rows, nil
}

// readCSVRows reads all records of a CSV file.
func (r *DataReader) readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.log.Debug("read %d rows from %s", len(rows), path)
	return rows, nil
}

// parseRows converts string rows into the numeric dataset form.
func (r *DataReader) parseRows(rows [][]string) (*ports.Dataset, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	data := make([][]float64, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := make([]float64, len(headers))
		for j := range headers {
			cell := ""
			if j < len(rows[i]) {
				cell = strings.TrimSpace(rows[i][j])
			}
			if cell == "" {
				return nil, fmt.Errorf("row %d column %q is empty", i, headers[j])
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %q is not numeric", i, headers[j], cell)
			}
			row[j] = v
		}
		data = append(data, row)
	}

	r.log.Info("dataset loaded (%d columns, %d rows)", len(headers), len(data))
	return &ports.Dataset{FeatureNames: headers, Rows: data}, nil
}

// SplitLabelColumn removes the named column from the dataset and returns it
// as the label vector, so one file can carry features and target together.
func SplitLabelColumn(ds *ports.Dataset, labelColumn string) (*ports.Dataset, []float64, error) {
	labelIdx := -1
	for i, name := range ds.FeatureNames {
		if name == labelColumn {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return nil, nil, fmt.Errorf("label column %q not found in dataset", labelColumn)
	}

	names := make([]string, 0, len(ds.FeatureNames)-1)
	names = append(names, ds.FeatureNames[:labelIdx]...)
	names = append(names, ds.FeatureNames[labelIdx+1:]...)

	labels := make([]float64, len(ds.Rows))
	rows := make([][]float64, len(ds.Rows))
	for i, row := range ds.Rows {
		labels[i] = row[labelIdx]
		out := make([]float64, 0, len(row)-1)
		out = append(out, row[:labelIdx]...)
		out = append(out, row[labelIdx+1:]...)
		rows[i] = out
	}
	return &ports.Dataset{FeatureNames: names, Rows: rows}, labels, nil
}
