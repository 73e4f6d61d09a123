package repository

import (
	"fmt"

	"github.com/godilite/reviewsent/internal/dataset"
	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first sheet of a workbook. Its first row is the header.
func readXLSX(path string) (*dataset.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return dataset.NewTable(tableName(path), nil, nil), nil
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: sheet %q: %v", ErrMalformed, path, sheets[0], err)
	}
	if len(raw) == 0 {
		return dataset.NewTable(tableName(path), nil, nil), nil
	}

	rows := make([][]dataset.Cell, 0, len(raw)-1)
	for _, r := range raw[1:] {
		row := make([]dataset.Cell, len(r))
		for i, v := range r {
			row[i] = textCell(v)
		}
		rows = append(rows, row)
	}
	return dataset.NewTable(tableName(path), raw[0], rows), nil
}
