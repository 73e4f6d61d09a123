package dataset

import (
	"database/sql"
	"math"
	"strconv"
	"strings"
)

// Cell is one null-aware value of a Table.
type Cell = sql.NullString

// Str returns a valid cell holding s.
func Str(s string) Cell {
	return Cell{String: s, Valid: true}
}

// Null returns an absent cell.
func Null() Cell {
	return Cell{}
}

// Table is a raw tabular dataset as read from an input boundary.
// Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Cell
}

// NewTable builds a Table, padding or truncating rows to the header width.
func NewTable(name string, columns []string, rows [][]Cell) *Table {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}

	out := make([][]Cell, len(rows))
	for i, r := range rows {
		row := make([]Cell, len(cols))
		copy(row, r)
		out[i] = row
	}
	return &Table{Name: name, Columns: cols, Rows: out}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex finds a column by exact name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// lookup finds a column case-insensitively, or -1.
func (t *Table) lookup(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// ColumnKind classifies a column by the values it holds.
type ColumnKind int

const (
	KindEmpty ColumnKind = iota
	KindNumeric
	KindString
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	default:
		return "empty"
	}
}

// Kind reports KindString when at least one non-null value is not a number.
func (t *Table) Kind(col int) ColumnKind {
	kind := KindEmpty
	for _, row := range t.Rows {
		c := row[col]
		if !c.Valid {
			continue
		}
		if _, ok := ParseFloat(c.String); !ok {
			return KindString
		}
		kind = KindNumeric
	}
	return kind
}

// ParseFloat parses a finite number, ignoring surrounding whitespace.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Merge concatenates tables under the first table's header. Rows of later
// tables are projected by column name; missing cells become null. Columns
// of later tables that the first header lacks are returned as dropped.
func Merge(tables ...*Table) (*Table, []string) {
	if len(tables) == 0 {
		return NewTable("", nil, nil), nil
	}
	first := tables[0]
	if len(tables) == 1 {
		return first, nil
	}

	names := make([]string, 0, len(tables))
	rows := make([][]Cell, 0, first.Len())
	rows = append(rows, first.Rows...)
	names = append(names, first.Name)

	seen := make(map[string]bool)
	var dropped []string
	for _, t := range tables[1:] {
		names = append(names, t.Name)

		idx := make([]int, len(first.Columns))
		for i, col := range first.Columns {
			idx[i] = t.ColumnIndex(col)
		}
		for _, col := range t.Columns {
			if first.ColumnIndex(col) < 0 && !seen[col] {
				seen[col] = true
				dropped = append(dropped, col)
			}
		}

		for _, r := range t.Rows {
			row := make([]Cell, len(first.Columns))
			for i, j := range idx {
				if j >= 0 {
					row[i] = r[j]
				}
			}
			rows = append(rows, row)
		}
	}

	return &Table{
		Name:    strings.Join(names, "+"),
		Columns: append([]string(nil), first.Columns...),
		Rows:    rows,
	}, dropped
}
