// Package export writes pipeline results to disk.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/godilite/reviewsent/internal/dataset"
	"github.com/godilite/reviewsent/internal/service"
)

// ErrOutput is returned when an output file cannot be written.
var ErrOutput = errors.New("cannot write output")

// Columns appended by WriteDatasetCSV.
const (
	ColCleanedText = "cleaned_text"
	ColScore       = "sentiment_score"
	ColSentiment   = "sentiment"
)

// WriteRanked writes the ranked reviews as an indented JSON array.
func WriteRanked(path string, ranked []service.RankedReview) error {
	if ranked == nil {
		ranked = []service.RankedReview{}
	}
	return writeJSON(path, ranked)
}

// WriteAggregates writes the chart counts as an indented JSON object.
func WriteAggregates(path string, report service.AggregateReport) error {
	return writeJSON(path, report)
}

func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFile(path, buf.Bytes())
}

// WriteDatasetCSV writes the source table of ds with the cleaned text,
// score and label of each record appended. Source columns with those names
// are replaced.
func WriteDatasetCSV(path string, ds *dataset.Dataset) error {
	src := ds.Source()
	if src == nil {
		return fmt.Errorf("%w: %s: dataset has no source table", ErrOutput, path)
	}

	derived := []string{ColCleanedText, ColScore, ColSentiment}
	var keep []int
	var header []string
	for i, col := range src.Columns {
		if !isDerived(col, derived) {
			keep = append(keep, i)
			header = append(header, col)
		}
	}
	header = append(header, derived...)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	for _, r := range ds.Records() {
		row := make([]string, 0, len(header))
		for _, i := range keep {
			row = append(row, src.Rows[r.Row][i].String)
		}
		score := ""
		if r.Score != nil {
			score = strconv.FormatFloat(*r.Score, 'f', -1, 64)
		}
		row = append(row, r.CleanedText, score, string(r.Sentiment))
		if err := w.Write(row); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return writeFile(path, buf.Bytes())
}

func isDerived(col string, derived []string) bool {
	for _, d := range derived {
		if strings.EqualFold(col, d) {
			return true
		}
	}
	return false
}

// writeFile creates the parent directories of path and writes data.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrOutput, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	return nil
}
