// Package source reads the business database: the movement ledger, the
// reference tables and arbitrary tables for dumps.
//
// Every query is fully materialized. Each read is tried once per candidate
// charset, preferred first, until one succeeds.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/kardex-extract/internal/config"
)

// ErrTimeout marks an extraction that ran past the query timeout. It is
// retryable: nothing was written.
var ErrTimeout = errors.New("query timed out")

// Opener opens a database handle. sql.Open in production.
type Opener func(driverName, dataSourceName string) (*sql.DB, error)

// Result is a materialized query result.
type Result struct {
	Columns []string
	Rows    [][]any

	// Charset is the candidate that produced the result.
	Charset string
}

// Source runs read queries with charset fallback.
type Source struct {
	desc       Descriptor
	candidates []string
	timeout    time.Duration
	open       Opener
	log        logrus.FieldLogger
}

// New returns a Source for the configured database.
func New(c config.DatabaseConfig, log logrus.FieldLogger) *Source {
	s := &Source{
		desc:       DescriptorFromConfig(c),
		candidates: c.CharsetOrder(),
		timeout:    c.QueryTimeout,
		open:       sql.Open,
		log:        log,
	}
	if c.Driver == DriverSQLite || len(s.candidates) == 0 {
		s.candidates = []string{""}
	}
	return s
}

// WithOpener replaces the function used to open connections.
func (s *Source) WithOpener(open Opener) *Source {
	s.open = open
	return s
}

// Query runs query once per charset candidate until one succeeds. When all
// candidates fail the last error is returned. Context expiry stops the loop
// and is reported as ErrTimeout.
func (s *Source) Query(ctx context.Context, name, query string, args ...any) (*Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var lastErr error
	for _, charset := range s.candidates {
		res, err := s.queryOnce(ctx, charset, query, args)
		if err == nil {
			s.log.WithFields(logrus.Fields{
				"table":   name,
				"charset": charset,
				"rows":    len(res.Rows),
			}).Debug("query succeeded")
			return res, nil
		}
		lastErr = err

		if ctxErr := ctx.Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, fmt.Errorf("read %s: %w after %s", name, ErrTimeout, s.timeout)
			}
			return nil, fmt.Errorf("read %s: %w", name, ctxErr)
		}

		s.log.WithFields(logrus.Fields{
			"table":   name,
			"charset": charset,
			"source":  s.desc.String(),
		}).WithError(err).Warn("query failed, trying next charset")
	}

	return nil, fmt.Errorf("read %s: all charsets failed: %w", name, lastErr)
}

func (s *Source) queryOnce(ctx context.Context, charset, query string, args []any) (*Result, error) {
	dsn, err := s.desc.DSN(charset)
	if err != nil {
		return nil, err
	}

	db, err := s.open(s.desc.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	res := &Result{Columns: columns, Charset: charset}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return res, nil
}

// Index maps column names to positions.
func (r *Result) Index() map[string]int {
	idx := make(map[string]int, len(r.Columns))
	for i, c := range r.Columns {
		idx[c] = i
	}
	return idx
}

// Strings renders every value as text.
func (r *Result) Strings() [][]string {
	out := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = asString(v)
		}
		out[i] = rec
	}
	return out
}
