package service

import "github.com/godilite/reviewsent/internal/dataset"

// table builds a test table; empty strings become null cells.
func table(columns []string, rows ...[]string) *dataset.Table {
	cells := make([][]dataset.Cell, len(rows))
	for i, row := range rows {
		cells[i] = make([]dataset.Cell, len(row))
		for j, v := range row {
			if v == "" {
				cells[i][j] = dataset.Null()
			} else {
				cells[i][j] = dataset.Str(v)
			}
		}
	}
	return dataset.NewTable("test", columns, cells)
}

func load(t *dataset.Table) *dataset.Dataset {
	ds, err := dataset.FromTable(t, "")
	if err != nil {
		panic(err)
	}
	return reconcile(normalizeAll(ds))
}

func texts(records []dataset.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = *r.Text
	}
	return out
}
