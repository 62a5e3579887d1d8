// Package excel reads tabular input files (xlsx and csv) into the
// engine's column-major dataset form. Cells stay raw strings; type
// resolution belongs to schema probing.
package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"tabscope/domain/core"
	"tabscope/domain/dataset"
	"tabscope/internal"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	log *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader() *DataReader {
	return &DataReader{log: internal.NewDefaultLogger()}
}

// Read loads the file at path into a dataset. The first row is the
// header; ragged rows are padded with empty cells so every column has
// equal length.
func (r *DataReader) Read(ctx context.Context, path string) (*dataset.Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, core.NewDatasetAccessError(path, err)
	}

	started := time.Now()
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = r.readCSVRows(ctx, path)
	case ".xlsx", ".xlsm":
		rows, err = r.readExcelRows(ctx, path)
	default:
		return nil, core.NewDatasetAccessError(path, core.ErrUnsupportedType)
	}
	if err != nil {
		return nil, err
	}
	r.log.Debug("read %d raw rows from %s in %.2fms",
		len(rows), path, float64(time.Since(started).Nanoseconds())/1e6)

	if len(rows) < 2 {
		return nil, core.NewDatasetAccessError(path, core.ErrEmptyColumn)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return buildDataset(name, rows)
}

func (r *DataReader) readExcelRows(ctx context.Context, path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, core.NewDatasetAccessError(path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewDatasetAccessError(path, core.ErrEmptyColumn)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// First sheet only; multi-sheet workbooks are one dataset per call
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewDatasetAccessError(path, err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows(ctx context.Context, path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, core.NewDatasetAccessError(path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, core.NewDatasetAccessError(path, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// buildDataset pivots row-major string cells into named columns
func buildDataset(name string, rows [][]string) (*dataset.Dataset, error) {
	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = header
	}

	columns := make([]*dataset.Column, len(headers))
	for i, header := range headers {
		columns[i] = &dataset.Column{
			Name:   core.ColumnKey(header),
			Values: make([]dataset.Value, 0, len(rows)-1),
		}
	}

	for _, row := range rows[1:] {
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			columns[i].Values = append(columns[i].Values, dataset.NewStringValue(cell))
		}
	}

	return dataset.New(name, columns)
}
