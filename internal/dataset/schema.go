package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSchema reports that no text-bearing column could be resolved.
var ErrSchema = errors.New("schema error")

// TextCandidates are the accepted text column names, in priority order.
// "text_" is the column name used by the legacy scraped exports.
var TextCandidates = []string{"text", "review", "review_text", "text_"}

const (
	colRating    = "rating"
	colBranch    = "branch"
	colLocation  = "location"
	colCategory  = "category"
	colSentiment = "sentiment"
	colScore     = "sentiment_score"
)

// SchemaError names the field that could not be resolved.
type SchemaError struct {
	Field   string
	Columns []string
	Reason  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("no %s column found: %s (columns: %s)",
		e.Field, e.Reason, strings.Join(e.Columns, ", "))
}

// Is makes errors.Is(err, ErrSchema) match.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Schema holds the resolved column names. Empty means absent.
type Schema struct {
	Text      string
	Rating    string
	Branch    string
	Location  string
	Category  string
	Sentiment string
	Score     string
}

// Capabilities is the ranking and aggregation signal set of a dataset.
type Capabilities struct {
	HasScore    bool `json:"has_score"`
	HasLabel    bool `json:"has_label"`
	HasRating   bool `json:"has_rating"`
	HasCategory bool `json:"has_category"`
}

// Capabilities derives the signal set from column presence.
func (s Schema) Capabilities() Capabilities {
	return Capabilities{
		HasScore:    s.Score != "",
		HasLabel:    s.Sentiment != "",
		HasRating:   s.Rating != "",
		HasCategory: s.Category != "",
	}
}

// ResolveSchema locates the text column and the optional review columns.
// A non-empty textColumn names the text column explicitly.
func ResolveSchema(t *Table, textColumn string) (Schema, error) {
	text, err := resolveText(t, textColumn)
	if err != nil {
		return Schema{}, err
	}

	s := Schema{Text: text}
	s.Rating = t.columnName(colRating)
	s.Branch = t.columnName(colBranch)
	s.Location = t.columnName(colLocation)
	s.Category = t.columnName(colCategory)
	s.Sentiment = t.columnName(colSentiment)
	s.Score = t.columnName(colScore)
	return s, nil
}

func resolveText(t *Table, override string) (string, error) {
	if override != "" {
		if i := t.ColumnIndex(override); i >= 0 {
			return t.Columns[i], nil
		}
		if i := t.lookup(override); i >= 0 {
			return t.Columns[i], nil
		}
		return "", &SchemaError{
			Field:   "text",
			Columns: t.Columns,
			Reason:  fmt.Sprintf("mapped column %q does not exist", override),
		}
	}

	for _, cand := range TextCandidates {
		if i := t.lookup(cand); i >= 0 {
			return t.Columns[i], nil
		}
	}

	for i := range t.Columns {
		if t.Kind(i) == KindString {
			return t.Columns[i], nil
		}
	}

	return "", &SchemaError{
		Field:   "text",
		Columns: t.Columns,
		Reason:  fmt.Sprintf("looked for %s and any string-typed column", strings.Join(TextCandidates, ", ")),
	}
}

func (t *Table) columnName(name string) string {
	if i := t.lookup(name); i >= 0 {
		return t.Columns[i]
	}
	return ""
}
