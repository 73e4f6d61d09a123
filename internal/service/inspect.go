package service

import (
	"fmt"

	"github.com/godilite/reviewsent/internal/dataset"
)

const (
	// MaxInputBytes is the largest input a validation accepts.
	MaxInputBytes = 10 << 20
	sampleRows    = 3
)

// Inspect reports whether a table can be analysed without running any stage.
func Inspect(t *dataset.Table, size int64, textColumn string) Inspection {
	report := Inspection{
		Name:       t.Name,
		Size:       size,
		Rows:       t.Len(),
		Columns:    append([]string{}, t.Columns...),
		SampleRows: []map[string]*string{},
	}

	schema, err := dataset.ResolveSchema(t, textColumn)
	if err != nil {
		report.Problems = append(report.Problems, err.Error())
	} else {
		report.TextColumn = schema.Text
		report.HasTextColumn = true
		report.Capabilities = schema.Capabilities()
	}

	if size > MaxInputBytes {
		report.Problems = append(report.Problems,
			fmt.Sprintf("input is %d bytes, limit is %d", size, MaxInputBytes))
	}

	for i := 0; i < t.Len() && i < sampleRows; i++ {
		row := make(map[string]*string, len(t.Columns))
		for j, col := range t.Columns {
			if cell := t.Rows[i][j]; cell.Valid {
				v := cell.String
				row[col] = &v
			} else {
				row[col] = nil
			}
		}
		report.SampleRows = append(report.SampleRows, row)
	}

	report.OK = report.HasTextColumn && size <= MaxInputBytes
	return report
}
