package dataset

import (
	"fmt"
	"strings"
)

// Label is a discrete sentiment class. The zero value means absent.
type Label string

const (
	LabelNone     Label = ""
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

// Labels lists every label in report order.
var Labels = []Label{LabelNegative, LabelNeutral, LabelPositive}

// Valid reports whether l is one of the three sentiment classes.
func (l Label) Valid() bool {
	switch l {
	case LabelPositive, LabelNeutral, LabelNegative:
		return true
	}
	return false
}

// ParseLabel accepts a label case-insensitively.
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return LabelNone, false
	}
	return l, true
}

// Record is one typed review row. Row is the position in the source table.
// RatingValue is the rating as read and orders records; Rating is its
// integer part for export and grouping.
type Record struct {
	Row         int
	Text        *string
	CleanedText string
	Rating      *int
	RatingValue *float64
	Branch      *string
	Category    *string
	Score       *float64
	Sentiment   Label
}

// Dataset is an immutable ordered set of records sharing one schema.
type Dataset struct {
	source  *Table
	schema  Schema
	caps    Capabilities
	records []Record
}

// FromTable resolves the schema of t and builds its typed records.
func FromTable(t *Table, textColumn string) (*Dataset, error) {
	schema, err := ResolveSchema(t, textColumn)
	if err != nil {
		return nil, err
	}

	idx := func(name string) int {
		if name == "" {
			return -1
		}
		return t.ColumnIndex(name)
	}
	text := idx(schema.Text)
	rating := idx(schema.Rating)
	branch := idx(schema.Branch)
	location := idx(schema.Location)
	category := idx(schema.Category)
	label := idx(schema.Sentiment)
	score := idx(schema.Score)

	records := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		r := Record{Row: i}
		r.Text = cellString(row, text)
		r.Branch = cellString(row, branch)
		if r.Branch == nil || *r.Branch == "" {
			r.Branch = cellString(row, location)
		}
		r.Category = cellString(row, category)
		if v := cellFloat(row, rating); v != nil {
			n := int(*v)
			r.Rating = &n
			r.RatingValue = v
		}
		r.Score = cellFloat(row, score)
		if label >= 0 && row[label].Valid {
			r.Sentiment, _ = ParseLabel(row[label].String)
		}
		records[i] = r
	}

	return &Dataset{
		source:  t,
		schema:  schema,
		caps:    schema.Capabilities(),
		records: records,
	}, nil
}

func cellString(row []Cell, i int) *string {
	if i < 0 || !row[i].Valid {
		return nil
	}
	s := row[i].String
	return &s
}

func cellFloat(row []Cell, i int) *float64 {
	if i < 0 || !row[i].Valid {
		return nil
	}
	f, ok := ParseFloat(row[i].String)
	if !ok {
		return nil
	}
	return &f
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.records)
}

// At returns the i-th record.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of the records in order.
func (d *Dataset) Records() []Record {
	return append([]Record(nil), d.records...)
}

// Schema returns the resolved column names.
func (d *Dataset) Schema() Schema {
	return d.schema
}

// Capabilities returns the signal set resolved when the dataset was loaded.
func (d *Dataset) Capabilities() Capabilities {
	return d.caps
}

// Source returns the table the dataset was built from, or nil.
func (d *Dataset) Source() *Table {
	return d.source
}

// Map returns a new dataset with fn applied to every record.
func (d *Dataset) Map(fn func(Record) Record) *Dataset {
	out := make([]Record, len(d.records))
	for i, r := range d.records {
		out[i] = fn(r)
	}
	return &Dataset{source: d.source, schema: d.schema, caps: d.caps, records: out}
}

// WithCapabilities returns a copy of d carrying caps.
func (d *Dataset) WithCapabilities(caps Capabilities) *Dataset {
	return &Dataset{source: d.source, schema: d.schema, caps: caps, records: d.records}
}

// Labelled counts the records carrying a sentiment label.
func (d *Dataset) Labelled() int {
	n := 0
	for _, r := range d.records {
		if r.Sentiment.Valid() {
			n++
		}
	}
	return n
}

func (r Record) String() string {
	text := "<nil>"
	if r.Text != nil {
		text = *r.Text
	}
	return fmt.Sprintf("Record(row=%d, sentiment=%q, text=%q)", r.Row, r.Sentiment, text)
}
