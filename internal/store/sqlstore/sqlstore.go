// Package sqlstore implements store.Store on database/sql for SQLite and
// PostgreSQL. Queries are written with ? placeholders and rebound for
// PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/database"
	"github.com/isdelr/notes-be/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of database/sql used by the store.
// Both *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements store.Store for SQL databases.
type Store struct {
	db      DBTX
	closer  func() error
	pinger  func(context.Context) error
	dialect database.Dialect
}

var _ store.Store = (*Store)(nil)

// New wraps an open connection pool. The caller is expected to have run
// database.Migrate on it.
func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, closer: db.Close, pinger: db.PingContext, dialect: dialect}
}

// Open connects, migrates and returns a ready Store.
func Open(ctx context.Context, dialect database.Dialect, dsn string) (*Store, error) {
	db, err := database.New(ctx, dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dialect, err)
	}
	if err := database.Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	return New(db, dialect), nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pinger(ctx)
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.closer()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL
func (s *Store) rebind(query string) string {
	if s.dialect != database.Postgres {
		return query
	}
	var result strings.Builder
	argNum := 1
	for _, c := range query {
		if c == '?' {
			fmt.Fprintf(&result, "$%d", argNum)
			argNum++
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// substring returns a case-sensitive "column contains ?" predicate.
func (s *Store) substring(column string) string {
	if s.dialect == database.Postgres {
		return "strpos(" + column + ", ?) > 0"
	}
	return "instr(" + column + ", ?) > 0"
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.ErrMalformedID
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
