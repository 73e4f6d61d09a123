package service

import (
	"encoding/json"

	"github.com/godilite/reviewsent/internal/dataset"
)

// RankedReview is the export projection of one record. Every key is always
// present; absent values encode as null.
type RankedReview struct {
	Branch         *string  `json:"branch"`
	Rating         *int     `json:"rating"`
	Text           string   `json:"text"`
	Sentiment      *string  `json:"sentiment"`
	SentimentScore *float64 `json:"sentiment_score"`
}

// LabelCounts maps a sentiment label to its number of records.
type LabelCounts map[dataset.Label]int

// AggregateReport holds the chart counts. ByCategory and ByRating are nil
// when the dataset has no such column.
type AggregateReport struct {
	SentimentCounts LabelCounts
	ByCategory      map[string]LabelCounts
	ByRating        map[int]LabelCounts
}

// MarshalJSON keeps present-but-empty groupings as {} and drops absent ones.
func (r AggregateReport) MarshalJSON() ([]byte, error) {
	counts := r.SentimentCounts
	if counts == nil {
		counts = LabelCounts{}
	}
	out := map[string]any{"sentiment_counts": counts}
	if r.ByCategory != nil {
		out["by_category"] = r.ByCategory
	}
	if r.ByRating != nil {
		out["by_rating"] = r.ByRating
	}
	return json.Marshal(out)
}

// Result is the outcome of one analyze run.
type Result struct {
	Records  int
	Strategy Strategy
	Ranked   []RankedReview
	Report   AggregateReport
	Warnings []string
}

// ScoreResult is the outcome of one score run.
type ScoreResult struct {
	Dataset  *dataset.Dataset
	Warnings []string
}

// Inspection is the validation report of an input table.
type Inspection struct {
	Name          string               `json:"name"`
	Size          int64                `json:"size"`
	Rows          int                  `json:"rows"`
	Columns       []string             `json:"columns"`
	TextColumn    string               `json:"text_column,omitempty"`
	HasTextColumn bool                 `json:"has_text_column"`
	Capabilities  dataset.Capabilities `json:"capabilities"`
	SampleRows    []map[string]*string `json:"sample_rows"`
	OK            bool                 `json:"ok"`
	Problems      []string             `json:"problems,omitempty"`
}
