package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTable(t *testing.T) {
	tbl := table(
		[]string{"branch", "location", "rating", "review", "sentiment", "sentiment_score", "category"},
		[]string{"Soho", "London", "4.0", "great", "Positive", "0.8", "Food"},
		[]string{"", "Leeds", "two", "", "mixed", "nan", ""},
	)

	ds, err := FromTable(tbl, "")
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	first := ds.At(0)
	require.NotNil(t, first.Branch)
	assert.Equal(t, "Soho", *first.Branch)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 4, *first.Rating)
	require.NotNil(t, first.RatingValue)
	assert.Equal(t, 4.0, *first.RatingValue)
	require.NotNil(t, first.Text)
	assert.Equal(t, "great", *first.Text)
	assert.Equal(t, LabelPositive, first.Sentiment)
	require.NotNil(t, first.Score)
	assert.Equal(t, 0.8, *first.Score)
	require.NotNil(t, first.Category)
	assert.Equal(t, "Food", *first.Category)

	second := ds.At(1)
	assert.Equal(t, 1, second.Row)
	require.NotNil(t, second.Branch, "location is the branch fallback")
	assert.Equal(t, "Leeds", *second.Branch)
	assert.Nil(t, second.Rating)
	assert.Nil(t, second.RatingValue)
	assert.Nil(t, second.Text)
	assert.Equal(t, LabelNone, second.Sentiment)
	assert.Nil(t, second.Score)
	assert.Nil(t, second.Category)

	assert.Equal(t, Capabilities{HasScore: true, HasLabel: true, HasRating: true, HasCategory: true}, ds.Capabilities())
	assert.Same(t, tbl, ds.Source())
	assert.Equal(t, 1, ds.Labelled())
}

func TestDataset_MapDoesNotMutate(t *testing.T) {
	ds, err := FromTable(table([]string{"text"}, []string{"a"}, []string{"b"}), "")
	require.NoError(t, err)

	mapped := ds.Map(func(r Record) Record {
		r.CleanedText = "changed"
		return r
	})

	assert.Empty(t, ds.At(0).CleanedText)
	assert.Equal(t, "changed", mapped.At(1).CleanedText)

	recs := ds.Records()
	recs[0].Row = 99
	assert.Equal(t, 0, ds.At(0).Row)
}

func TestParseLabel(t *testing.T) {
	cases := map[string]Label{
		"negative":  LabelNegative,
		" Neutral ": LabelNeutral,
		"POSITIVE":  LabelPositive,
	}
	for in, want := range cases {
		got, ok := ParseLabel(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	_, ok := ParseLabel("mixed")
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	a := table([]string{"text", "rating"}, []string{"one", "1"})
	a.Name = "a.csv"
	b := table([]string{"rating", "extra", "text"}, []string{"2", "x", "two"})
	b.Name = "b.csv"
	c := table([]string{"text"}, []string{"three"})
	c.Name = "c.csv"

	merged, dropped := Merge(a, b, c)

	assert.Equal(t, "a.csv+b.csv+c.csv", merged.Name)
	assert.Equal(t, []string{"text", "rating"}, merged.Columns)
	assert.Equal(t, []string{"extra"}, dropped)
	require.Equal(t, 3, merged.Len())
	assert.Equal(t, Str("two"), merged.Rows[1][0])
	assert.Equal(t, Str("2"), merged.Rows[1][1])
	assert.Equal(t, Null(), merged.Rows[2][1])
}

func TestTableKind(t *testing.T) {
	tbl := table([]string{"n", "s", "e"}, []string{"1.5", "x", ""}, []string{"-2", "3", ""})
	assert.Equal(t, KindNumeric, tbl.Kind(0))
	assert.Equal(t, KindString, tbl.Kind(1))
	assert.Equal(t, KindEmpty, tbl.Kind(2))
}
