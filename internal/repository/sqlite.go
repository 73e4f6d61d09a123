package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/godilite/reviewsent/internal/dataset"
	"github.com/godilite/reviewsent/pkg/database"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeout = 30 * time.Second

// readSQLite reads every row of one table or view of a SQLite database.
func readSQLite(ctx context.Context, path, table string) (*dataset.Table, error) {
	ctx, cancel := context.WithTimeout(ctx, sqliteTimeout)
	defer cancel()

	db, err := database.Open(ctx,
		database.WithSQLiteFile(path, true),
		database.WithMaxOpenConns(1),
		database.WithRetry(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	defer db.Close()

	t, err := NewTableReader(db).Read(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Name = tableName(path) + ":" + table
	return t, nil
}

// TableReader reads whole tables from a SQLite database.
type TableReader struct {
	db *sql.DB
}

func NewTableReader(db *sql.DB) *TableReader {
	return &TableReader{db: db}
}

// Read returns every row of the named table or view. A name that is not in
// the schema is ErrInputNotFound.
func (r *TableReader) Read(ctx context.Context, table string) (*dataset.Table, error) {
	exists, err := r.exists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: table %q", ErrInputNotFound, table)
	}

	query, args, err := sq.Select("*").From(quoteIdent(table)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}

	var out [][]dataset.Cell
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make([]dataset.Cell, len(columns))
		for i, v := range values {
			row[i] = sqlCell(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	return dataset.NewTable(table, columns, out), nil
}

func (r *TableReader) exists(ctx context.Context, table string) (bool, error) {
	query, args, err := sq.Select("1").
		From("sqlite_master").
		Where(sq.Eq{"type": []string{"table", "view"}, "name": table}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build schema lookup: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("schema lookup: %w", err)
	}
	return true, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// sqlCell converts a scanned SQLite value. Only SQL NULL is absent.
func sqlCell(v any) dataset.Cell {
	switch x := v.(type) {
	case nil:
		return dataset.Null()
	case []byte:
		return dataset.Str(string(x))
	case string:
		return dataset.Str(x)
	case int64:
		return dataset.Str(strconv.FormatInt(x, 10))
	case float64:
		return dataset.Str(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		return dataset.Str(strconv.FormatBool(x))
	case time.Time:
		return dataset.Str(x.Format(time.RFC3339))
	default:
		return dataset.Str(fmt.Sprint(x))
	}
}
