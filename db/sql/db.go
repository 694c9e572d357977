// Package sql runs queries against a SQL database within the configured query period.
package sql

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/permutationlock/catacrawl/db"
)

// Database wraps a SQL database handle with the common database configuration.
type Database struct {
	DB *sql.DB
	db.Config
}

// ErrNoRows is returned by Query when no row matches.
var ErrNoRows = sql.ErrNoRows

// NewDatabase creates a Database around the open handle.
func NewDatabase(sqlDB *sql.DB, cfg db.Config) (*Database, error) {
	switch {
	case sqlDB == nil:
		return nil, fmt.Errorf("creating database: validation: sql database handle required")
	case cfg.QueryPeriod <= 0:
		return nil, fmt.Errorf("creating database: validation: positive query period required")
	}
	d := Database{
		DB:     sqlDB,
		Config: cfg,
	}
	return &d, nil
}

// Setup initializes the database by executing the contents of the files as raw queries.
func (d Database) Setup(ctx context.Context, files []io.Reader) error {
	queries := make([]Query, len(files))
	for i, f := range files {
		b, err := io.ReadAll(f)
		if err != nil {
			return fmt.Errorf("reading setup query %v: %w", i, err)
		}
		queries[i] = RawQuery(b)
	}
	if err := d.Exec(ctx, queries...); err != nil {
		return fmt.Errorf("running setup queries: %w", err)
	}
	return nil
}

// Query runs the query for a single row, scanning into the destination arguments.
func (d Database) Query(ctx context.Context, q Query, dest ...interface{}) error {
	ctx, cancelFunc := context.WithTimeout(ctx, d.QueryPeriod)
	defer cancelFunc()
	row := d.DB.QueryRowContext(ctx, q.Cmd(), q.Args()...)
	if err := row.Scan(dest...); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("scanning row: %w", err)
	}
	return nil
}

// Exec evaluates the queries in a transaction, ensuring each exec function changes exactly one row.
func (d Database) Exec(ctx context.Context, queries ...Query) error {
	ctx, cancelFunc := context.WithTimeout(ctx, d.QueryPeriod)
	defer cancelFunc()
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	for i, q := range queries {
		result, err := tx.ExecContext(ctx, q.Cmd(), q.Args()...)
		if f, ok := q.(ExecFunction); err == nil && ok {
			var n int64
			n, err = result.RowsAffected()
			if err == nil && n != 1 {
				err = fmt.Errorf("wanted to update 1 row, but updated %d when calling %s", n, f.name)
			}
		}
		if err != nil {
			err = fmt.Errorf("executing query %v: %w", i, err)
			if err2 := tx.Rollback(); err2 != nil {
				return fmt.Errorf("rolling back transaction due to %v: %w", err, err2)
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
