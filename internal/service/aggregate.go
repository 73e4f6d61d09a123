package service

import "github.com/godilite/reviewsent/internal/dataset"

// Aggregate counts labels overall, and per category and per rating when the
// dataset has those columns. Grouped counts are zero-filled over the labels
// observed anywhere in the dataset; overall counts never contain zeros.
func Aggregate(ds *dataset.Dataset) (AggregateReport, error) {
	if ds.Labelled() == 0 {
		return AggregateReport{}, ErrMissingSentiment
	}

	report := AggregateReport{SentimentCounts: LabelCounts{}}
	for _, r := range ds.Records() {
		if r.Sentiment.Valid() {
			report.SentimentCounts[r.Sentiment]++
		}
	}

	caps := ds.Capabilities()
	if caps.HasCategory {
		report.ByCategory = make(map[string]LabelCounts)
		for _, r := range ds.Records() {
			if r.Category == nil || !r.Sentiment.Valid() {
				continue
			}
			counts, ok := report.ByCategory[*r.Category]
			if !ok {
				counts = zeroCounts(report.SentimentCounts)
				report.ByCategory[*r.Category] = counts
			}
			counts[r.Sentiment]++
		}
	}

	if caps.HasRating {
		report.ByRating = make(map[int]LabelCounts)
		for _, r := range ds.Records() {
			if r.Rating == nil || !r.Sentiment.Valid() {
				continue
			}
			counts, ok := report.ByRating[*r.Rating]
			if !ok {
				counts = zeroCounts(report.SentimentCounts)
				report.ByRating[*r.Rating] = counts
			}
			counts[r.Sentiment]++
		}
	}

	return report, nil
}

func zeroCounts(observed LabelCounts) LabelCounts {
	counts := make(LabelCounts, len(observed))
	for label := range observed {
		counts[label] = 0
	}
	return counts
}
