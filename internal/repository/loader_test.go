package repository_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/godilite/reviewsent/internal/dataset"
	"github.com/godilite/reviewsent/internal/repository"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// values flattens a table to strings, with "<nil>" for null cells.
func values(tbl *dataset.Table) [][]string {
	out := make([][]string, len(tbl.Rows))
	for i, row := range tbl.Rows {
		out[i] = make([]string, len(row))
		for j, c := range row {
			if c.Valid {
				out[i][j] = c.String
			} else {
				out[i][j] = "<nil>"
			}
		}
	}
	return out
}

func TestFormatOf(t *testing.T) {
	tests := map[string]repository.Format{
		"reviews.csv":     repository.FormatCSV,
		"REVIEWS.CSV":     repository.FormatCSV,
		"reviews.tsv":     repository.FormatTSV,
		"book.xlsx":       repository.FormatXLSX,
		"export.htm":      repository.FormatHTML,
		"export.html":     repository.FormatHTML,
		"store.db":        repository.FormatSQLite,
		"store.sqlite3":   repository.FormatSQLite,
		"dir.v2/store.db": repository.FormatSQLite,
	}
	for path, want := range tests {
		got, err := repository.FormatOf(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := repository.FormatOf("reviews.json")
	assert.ErrorIs(t, err, repository.ErrUnsupportedFormat)
}

func TestLoadCSV(t *testing.T) {
	ctx := context.Background()
	loader := repository.NewLoader(repository.WithLogger(zaptest.NewLogger(t)))

	t.Run("header, quoting and null tokens", func(t *testing.T) {
		path := writeFile(t, "reviews.csv", "\ufeffReview_ID,Review_Text,Rating\n"+
			"1,\"Great, really great\",5\n"+
			"2,NA,\n"+
			"3,\"multi\nline\",2\n")

		tbl, err := loader.Load(ctx, path)

		require.NoError(t, err)
		assert.Equal(t, "reviews.csv", tbl.Name)
		assert.Equal(t, []string{"Review_ID", "Review_Text", "Rating"}, tbl.Columns)
		assert.Equal(t, [][]string{
			{"1", "Great, really great", "5"},
			{"2", "<nil>", "<nil>"},
			{"3", "multi\nline", "2"},
		}, values(tbl))
	})

	t.Run("ragged rows are padded", func(t *testing.T) {
		path := writeFile(t, "ragged.csv", "text,rating\nshort\nlong,1,extra\n")

		tbl, err := loader.Load(ctx, path)

		require.NoError(t, err)
		assert.Equal(t, [][]string{{"short", "<nil>"}, {"long", "1"}}, values(tbl))
	})

	t.Run("empty file has no columns", func(t *testing.T) {
		tbl, err := loader.Load(ctx, writeFile(t, "empty.csv", ""))

		require.NoError(t, err)
		assert.Empty(t, tbl.Columns)
		assert.Zero(t, tbl.Len())
	})

	t.Run("bad quoting is malformed", func(t *testing.T) {
		_, err := loader.Load(ctx, writeFile(t, "bad.csv", "text\n\"unterminated\n"))

		assert.ErrorIs(t, err, repository.ErrMalformed)
	})

	t.Run("tsv", func(t *testing.T) {
		tbl, err := loader.Load(ctx, writeFile(t, "reviews.tsv", "text\tsentiment\nok, fine\tneutral\n"))

		require.NoError(t, err)
		assert.Equal(t, [][]string{{"ok, fine", "neutral"}}, values(tbl))
	})
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()
	loader := repository.NewLoader()

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load(ctx, filepath.Join(t.TempDir(), "nope.csv"))

		assert.ErrorIs(t, err, repository.ErrInputNotFound)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := loader.Load(ctx, t.TempDir())

		assert.ErrorIs(t, err, repository.ErrInputNotFound)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := loader.Load(ctx, writeFile(t, "reviews.json", "[]"))

		assert.ErrorIs(t, err, repository.ErrUnsupportedFormat)
	})
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.xlsx")
	f := excelize.NewFile()
	sheet := "Sheet1"
	data := [][]any{
		{"Review_Text", "Rating", "Branch"},
		{"Loved it", 5, "Disneyland_Paris"},
		{"Meh", nil, "Disneyland_HongKong"},
	}
	for r, row := range data {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := repository.NewLoader().Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"Review_Text", "Rating", "Branch"}, tbl.Columns)
	assert.Equal(t, [][]string{
		{"Loved it", "5", "Disneyland_Paris"},
		{"Meh", "<nil>", "Disneyland_HongKong"},
	}, values(tbl))
}

func TestReadHTML(t *testing.T) {
	t.Run("first table with thead", func(t *testing.T) {
		doc := `<html><body>
			<table id="reviews">
				<thead><tr><th>Text</th><th> Rating </th></tr></thead>
				<tbody>
					<tr><td>Too   many
						queues</td><td>2</td></tr>
					<tr><td>Nice <b>parade</b></td><td></td></tr>
				</tbody>
			</table>
			<table><tr><th>other</th></tr><tr><td>x</td></tr></table>
		</body></html>`

		tbl, err := repository.ReadHTML(strings.NewReader(doc), "export.html")

		require.NoError(t, err)
		assert.Equal(t, []string{"Text", "Rating"}, tbl.Columns)
		assert.Equal(t, [][]string{{"Too many queues", "2"}, {"Nice parade", "<nil>"}}, values(tbl))
	})

	t.Run("nested tables are skipped", func(t *testing.T) {
		doc := `<table>
			<tr><td>text</td></tr>
			<tr><td>outer<table><tr><td>inner</td></tr></table></td></tr>
		</table>`

		tbl, err := repository.ReadHTML(strings.NewReader(doc), "x.html")

		require.NoError(t, err)
		assert.Equal(t, []string{"text"}, tbl.Columns)
		require.Equal(t, 1, tbl.Len())
	})

	t.Run("no table", func(t *testing.T) {
		_, err := repository.ReadHTML(strings.NewReader("<p>nothing</p>"), "x.html")

		assert.ErrorIs(t, err, repository.ErrMalformed)
	})
}

func setupSQLite(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "reviews.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
	CREATE TABLE reviews (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		review_text TEXT,
		rating INTEGER,
		sentiment_score REAL
	);
	CREATE TABLE "odd ""name""" (text TEXT);
	INSERT INTO reviews (review_text, rating, sentiment_score) VALUES
		('Great day out', 5, 0.8),
		('Queues everywhere', 2, -0.25),
		(NULL, NULL, NULL);
	INSERT INTO "odd ""name""" (text) VALUES ('quoted');
	`)
	require.NoError(t, err)
	return path
}

func TestLoadSQLite_Integration(t *testing.T) {
	ctx := context.Background()
	path := setupSQLite(t)

	t.Run("default table", func(t *testing.T) {
		tbl, err := repository.NewLoader().Load(ctx, path)

		require.NoError(t, err)
		assert.Equal(t, "reviews.db:reviews", tbl.Name)
		assert.Equal(t, []string{"id", "review_text", "rating", "sentiment_score"}, tbl.Columns)
		assert.Equal(t, [][]string{
			{"1", "Great day out", "5", "0.8"},
			{"2", "Queues everywhere", "2", "-0.25"},
			{"3", "<nil>", "<nil>", "<nil>"},
		}, values(tbl))
	})

	t.Run("quoted table name", func(t *testing.T) {
		tbl, err := repository.NewLoader(repository.WithSQLiteTable(`odd "name"`)).Load(ctx, path)

		require.NoError(t, err)
		assert.Equal(t, [][]string{{"quoted"}}, values(tbl))
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := repository.NewLoader(repository.WithSQLiteTable("reviews; DROP TABLE reviews")).Load(ctx, path)

		assert.ErrorIs(t, err, repository.ErrInputNotFound)
	})
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()
	loader := repository.NewLoader()

	t.Run("merges under the first header", func(t *testing.T) {
		first := writeFile(t, "a.csv", "text,rating\none,1\n")
		second := writeFile(t, "b.tsv", "rating\ttext\textra\n2\ttwo\tx\n")

		tbl, warnings, err := loader.LoadAll(ctx, []string{first, second})

		require.NoError(t, err)
		assert.Equal(t, "a.csv+b.tsv", tbl.Name)
		assert.Equal(t, []string{"text", "rating"}, tbl.Columns)
		assert.Equal(t, [][]string{{"one", "1"}, {"two", "2"}}, values(tbl))
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "extra")
	})

	t.Run("single input", func(t *testing.T) {
		tbl, warnings, err := loader.LoadAll(ctx, []string{writeFile(t, "a.csv", "text\nx\n")})

		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, 1, tbl.Len())
	})

	t.Run("no paths", func(t *testing.T) {
		_, _, err := loader.LoadAll(ctx, nil)

		assert.ErrorIs(t, err, repository.ErrInputNotFound)
	})

	t.Run("any missing input fails", func(t *testing.T) {
		_, _, err := loader.LoadAll(ctx, []string{writeFile(t, "a.csv", "text\nx\n"), "missing.csv"})

		assert.ErrorIs(t, err, repository.ErrInputNotFound)
	})
}
