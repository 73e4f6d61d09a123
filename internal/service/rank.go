package service

import (
	"sort"

	"github.com/godilite/reviewsent/internal/dataset"
)

// Strategy names the single signal a ranking was ordered by.
type Strategy string

const (
	StrategyScore  Strategy = "sentiment_score"
	StrategyLabel  Strategy = "sentiment"
	StrategyRating Strategy = "rating"
	StrategyOrder  Strategy = "original_order"
)

// SelectStrategy picks the first available signal: score, label, rating,
// then plain file order. Signals are never combined.
func SelectStrategy(caps dataset.Capabilities) Strategy {
	switch {
	case caps.HasScore:
		return StrategyScore
	case caps.HasLabel:
		return StrategyLabel
	case caps.HasRating:
		return StrategyRating
	default:
		return StrategyOrder
	}
}

// RankWorst returns at most topN records, worst first, ordered by the
// strategy the dataset's capabilities select. Ties keep file order.
func RankWorst(ds *dataset.Dataset, topN int) []dataset.Record {
	if topN <= 0 || ds.Len() == 0 {
		return []dataset.Record{}
	}

	records := ds.Records()
	switch SelectStrategy(ds.Capabilities()) {
	case StrategyScore:
		sort.SliceStable(records, func(i, j int) bool {
			return lessFloatNullsLast(records[i].Score, records[j].Score)
		})
	case StrategyLabel:
		negative := records[:0]
		for _, r := range records {
			if r.Sentiment == dataset.LabelNegative {
				negative = append(negative, r)
			}
		}
		records = negative
	case StrategyRating:
		sort.SliceStable(records, func(i, j int) bool {
			return lessFloatNullsLast(records[i].RatingValue, records[j].RatingValue)
		})
	}

	if len(records) > topN {
		records = records[:topN]
	}
	return records
}

func lessFloatNullsLast(a, b *float64) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a < *b
}

// Project maps ranked records to their export shape.
func Project(records []dataset.Record) []RankedReview {
	out := make([]RankedReview, len(records))
	for i, r := range records {
		item := RankedReview{
			Branch:         r.Branch,
			Rating:         r.Rating,
			SentimentScore: r.Score,
		}
		if r.Text != nil {
			item.Text = *r.Text
		}
		if r.Sentiment.Valid() {
			label := string(r.Sentiment)
			item.Sentiment = &label
		}
		out[i] = item
	}
	return out
}
