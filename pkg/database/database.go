// Package database opens database/sql pools with a verified connection.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// go-sqlite3 splits the DSN at the first '?' and url.URL leaves Opaque
// unescaped, so the file part is escaped by hand.
var sqlitePathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

type settings struct {
	driver   string
	dsn      string
	maxOpen  int
	maxIdle  int
	idleTime time.Duration
	attempts int
	backoff  time.Duration
}

type Option func(*settings)

func withDriver(driver string) Option {
	return func(s *settings) { s.driver = driver }
}

func withDataSource(dsn string) Option {
	return func(s *settings) { s.dsn = dsn }
}

// WithSQLiteFile points the sqlite3 driver at the database file at path.
// A read-only source never creates the file.
func WithSQLiteFile(path string, readOnly bool) Option {
	return func(s *settings) {
		q := url.Values{}
		q.Set("_busy_timeout", "5000")
		if readOnly {
			q.Set("mode", "ro")
		}
		s.driver = "sqlite3"
		s.dsn = "file:" + sqlitePathEscaper.Replace(path) + "?" + q.Encode()
	}
}

func WithMaxOpenConns(n int) Option {
	return func(s *settings) { s.maxOpen = n }
}

// WithRetry makes Open try attempts times, waiting backoff, 2*backoff, ...
// between tries.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *settings) {
		s.attempts = attempts
		s.backoff = backoff
	}
}

// Open creates a connection pool and pings it until it answers, the
// attempts run out or ctx is done.
func Open(ctx context.Context, opts ...Option) (*sql.DB, error) {
	s := &settings{
		driver:   "sqlite3",
		dsn:      ":memory:",
		maxOpen:  4,
		maxIdle:  1,
		idleTime: 2 * time.Minute,
		attempts: 3,
		backoff:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.driver == "" {
		return nil, errors.New("database driver cannot be empty")
	}
	if s.dsn == "" {
		return nil, errors.New("database data source cannot be empty")
	}
	s.attempts = max(s.attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		db, err := s.connect(ctx)
		if err == nil {
			return db, nil
		}
		lastErr = err

		if attempt == s.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * s.backoff):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", s.attempts, lastErr)
}

func (s *settings) connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(s.maxOpen)
	db.SetMaxIdleConns(min(s.maxIdle, s.maxOpen))
	db.SetConnMaxIdleTime(s.idleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
