package repository

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/godilite/reviewsent/internal/dataset"
)

func readHTMLFile(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadHTML(f, tableName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadHTML reads the first <table> of an HTML document. The header is the
// row of the <thead>, or else the first row.
func ReadHTML(r io.Reader, name string) (*dataset.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no <table> element", ErrMalformed)
	}

	var header []string
	var rows [][]dataset.Cell
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		// Skip rows of tables nested inside cells.
		if tr.Closest("table").Get(0) != table.Get(0) {
			return
		}
		cells := tr.ChildrenFiltered("th, td")
		if header == nil {
			header = make([]string, 0, cells.Length())
			cells.Each(func(_ int, c *goquery.Selection) {
				header = append(header, cellText(c))
			})
			return
		}
		row := make([]dataset.Cell, 0, cells.Length())
		cells.Each(func(_ int, c *goquery.Selection) {
			row = append(row, textCell(cellText(c)))
		})
		rows = append(rows, row)
	})

	return dataset.NewTable(name, header, rows), nil
}

func cellText(c *goquery.Selection) string {
	return strings.Join(strings.Fields(c.Text()), " ")
}
