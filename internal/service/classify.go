package service

import "github.com/godilite/reviewsent/internal/dataset"

// Classify maps a polarity score to a label by its sign. Exactly zero,
// including scores that underflowed to zero, is neutral.
func Classify(score float64) dataset.Label {
	switch {
	case score > 0:
		return dataset.LabelPositive
	case score == 0:
		return dataset.LabelNeutral
	default:
		return dataset.LabelNegative
	}
}

// reconcile relabels every scored record from its score so that a record
// never carries a score and a label that disagree.
func reconcile(ds *dataset.Dataset) *dataset.Dataset {
	if !ds.Capabilities().HasScore {
		return ds
	}
	return ds.Map(func(r dataset.Record) dataset.Record {
		if r.Score != nil {
			r.Sentiment = Classify(*r.Score)
		}
		return r
	})
}
