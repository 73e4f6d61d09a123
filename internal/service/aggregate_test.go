package service

import (
	"encoding/json"
	"testing"

	"github.com/godilite/reviewsent/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	t.Run("overall counts omit unobserved labels", func(t *testing.T) {
		ds := load(table([]string{"text", "sentiment"},
			[]string{"a", "positive"},
			[]string{"b", "negative"},
			[]string{"c", "negative"},
			[]string{"d", ""},
		))

		report, err := Aggregate(ds)

		require.NoError(t, err)
		assert.Equal(t, LabelCounts{dataset.LabelPositive: 1, dataset.LabelNegative: 2}, report.SentimentCounts)
		assert.Nil(t, report.ByCategory)
		assert.Nil(t, report.ByRating)
	})

	t.Run("groups are zero-filled over observed labels", func(t *testing.T) {
		ds := load(table([]string{"text", "sentiment", "category", "rating"},
			[]string{"a", "positive", "food", "5"},
			[]string{"b", "negative", "food", "1"},
			[]string{"c", "negative", "rides", "1"},
			[]string{"d", "negative", "", ""},
			[]string{"e", "", "rides", "3"},
		))

		report, err := Aggregate(ds)

		require.NoError(t, err)
		assert.Equal(t, map[string]LabelCounts{
			"food":  {dataset.LabelPositive: 1, dataset.LabelNegative: 1},
			"rides": {dataset.LabelPositive: 0, dataset.LabelNegative: 1},
		}, report.ByCategory)
		assert.Equal(t, map[int]LabelCounts{
			5: {dataset.LabelPositive: 1, dataset.LabelNegative: 0},
			1: {dataset.LabelPositive: 0, dataset.LabelNegative: 2},
		}, report.ByRating)
	})

	t.Run("group sums never exceed overall counts", func(t *testing.T) {
		ds := load(table([]string{"text", "sentiment", "category"},
			[]string{"a", "neutral", "x"},
			[]string{"b", "neutral", ""},
			[]string{"c", "positive", "y"},
		))

		report, err := Aggregate(ds)
		require.NoError(t, err)

		for _, label := range dataset.Labels {
			sum := 0
			for _, counts := range report.ByCategory {
				sum += counts[label]
			}
			assert.LessOrEqual(t, sum, report.SentimentCounts[label])
		}
	})

	t.Run("unlabelled dataset is an error", func(t *testing.T) {
		ds := load(table([]string{"text", "rating"},
			[]string{"a", "1"},
		))

		_, err := Aggregate(ds)

		assert.ErrorIs(t, err, ErrMissingSentiment)
	})
}

func TestAggregateReportJSON(t *testing.T) {
	t.Run("absent groupings are omitted", func(t *testing.T) {
		data, err := json.Marshal(AggregateReport{SentimentCounts: LabelCounts{dataset.LabelNeutral: 5}})

		require.NoError(t, err)
		assert.JSONEq(t, `{"sentiment_counts":{"neutral":5}}`, string(data))
	})

	t.Run("present groupings are kept", func(t *testing.T) {
		data, err := json.Marshal(AggregateReport{
			SentimentCounts: LabelCounts{dataset.LabelNegative: 1},
			ByCategory:      map[string]LabelCounts{},
			ByRating:        map[int]LabelCounts{2: {dataset.LabelNegative: 1}},
		})

		require.NoError(t, err)
		assert.JSONEq(t, `{"sentiment_counts":{"negative":1},"by_category":{},"by_rating":{"2":{"negative":1}}}`, string(data))
	})
}
