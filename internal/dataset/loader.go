package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"data-analyst-agent/internal/model"
)

const (
	// MaxXLSRows bounds how many rows are read from legacy .xls sheets.
	MaxXLSRows = 65535
)

// Load parses raw file bytes in the declared format into a Dataset.
// The first row is treated as the header. Supported formats: csv, xlsx, xls.
func Load(raw []byte, format string) (*model.Dataset, error) {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))

	var (
		rows [][]string
		err  error
	)

	switch format {
	case "csv":
		rows, err = readCSV(raw)
	case "xlsx":
		rows, err = readXLSX(raw)
	case "xls":
		rows, err = readXLS(raw)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyData
	}

	header := rows[0]
	data := rows[1:]

	// Normalize ragged rows to header width.
	width := len(header)
	for i, row := range data {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			data[i] = padded
		} else if len(row) > width {
			data[i] = row[:width]
		}
	}

	columns := make([]model.Column, width)
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		colType, coerced := inferColumn(data, i)
		columns[i] = model.Column{Name: name, Type: colType, Coerced: coerced}
	}

	return &model.Dataset{
		Columns:  columns,
		Rows:     data,
		ByteSize: int64(len(raw)),
	}, nil
}

func readCSV(raw []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %v", ErrUnsupportedFormat, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSX(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyData
	}

	// Only the first sheet is loaded; a session holds one table.
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx: %v", ErrUnsupportedFormat, err)
	}
	return rows, nil
}

func readXLS(raw []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(raw), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: xls: %v", ErrUnsupportedFormat, err)
	}

	rows := wb.ReadAllCells(MaxXLSRows)
	return rows, nil
}
