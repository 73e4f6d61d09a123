package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/godilite/reviewsent/internal/dataset"
	"go.uber.org/zap"
)

var (
	ErrInputNotFound     = errors.New("input not found")
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrMalformed         = errors.New("malformed input")
)

// DefaultSQLiteTable is the table read from SQLite inputs unless configured.
const DefaultSQLiteTable = "reviews"

// Format is an input file format, chosen by file extension.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatXLSX   Format = "xlsx"
	FormatHTML   Format = "html"
	FormatSQLite Format = "sqlite"
)

// FormatOf maps a path's extension to its format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv", ".tab":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".html", ".htm":
		return FormatHTML, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Loader reads review tables from files.
type Loader struct {
	sqliteTable string
	logger      *zap.Logger
}

type Option func(*Loader)

// WithSQLiteTable sets the table read from SQLite inputs.
func WithSQLiteTable(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.sqliteTable = name
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		sqliteTable: DefaultSQLiteTable,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.Named("loader")
	return l
}

// Stat returns the size of the input at path.
func Stat(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%w: %s is a directory", ErrInputNotFound, path)
	}
	return info.Size(), nil
}

// Load reads the table at path.
func (l *Loader) Load(ctx context.Context, path string) (*dataset.Table, error) {
	if _, err := Stat(path); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var t *dataset.Table
	switch format {
	case FormatCSV:
		t, err = readDelimitedFile(path, ',')
	case FormatTSV:
		t, err = readDelimitedFile(path, '\t')
	case FormatXLSX:
		t, err = readXLSX(path)
	case FormatHTML:
		t, err = readHTMLFile(path)
	case FormatSQLite:
		t, err = readSQLite(ctx, path, l.sqliteTable)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("loaded input",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("rows", t.Len()),
		zap.Int("columns", len(t.Columns)))
	return t, nil
}

// LoadAll reads every path and merges the tables under the first header.
// The returned warnings name the columns that were dropped.
func (l *Loader) LoadAll(ctx context.Context, paths []string) (*dataset.Table, []string, error) {
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("%w: no input paths", ErrInputNotFound)
	}

	tables := make([]*dataset.Table, 0, len(paths))
	for _, p := range paths {
		t, err := l.Load(ctx, p)
		if err != nil {
			return nil, nil, err
		}
		tables = append(tables, t)
	}

	merged, dropped := dataset.Merge(tables...)
	var warnings []string
	if len(dropped) > 0 {
		msg := fmt.Sprintf("dropped columns missing from %s: %s", tables[0].Name, strings.Join(dropped, ", "))
		l.logger.Warn("dropped columns while merging inputs", zap.Strings("columns", dropped))
		warnings = append(warnings, msg)
	}
	return merged, warnings, nil
}

func tableName(path string) string {
	return filepath.Base(path)
}
