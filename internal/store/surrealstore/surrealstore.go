// Package surrealstore implements store.Store on SurrealDB.
//
// Records carry their public id in a plain uid field so results never need
// RecordID decoding. Timestamps are stored as fixed-width UTC strings, which
// keeps ORDER BY on them chronological.
package surrealstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/notes-be/internal/apperr"
	"github.com/isdelr/notes-be/internal/store"
	surrealdb "github.com/surrealdb/surrealdb.go"
)

const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Config holds the connection settings.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// Store implements store.Store for SurrealDB.
type Store struct {
	db *surrealdb.DB
}

var _ store.Store = (*Store)(nil)

// Open connects, signs in, selects the namespace and database and defines
// the unique indexes.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if cfg.Username != "" {
		authData := &surrealdb.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
		}
		if _, err := db.SignIn(ctx, authData); err != nil {
			db.Close(ctx)
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		db.Close(ctx)
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	s := &Store{db: db}
	if err := s.DefineSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return s, nil
}

// DefineSchema declares the unique indexes. Tables themselves are created
// on first write.
func (s *Store) DefineSchema(ctx context.Context) error {
	statements := []string{
		"DEFINE INDEX IF NOT EXISTS user_uid ON TABLE user COLUMNS uid UNIQUE",
		"DEFINE INDEX IF NOT EXISTS user_username ON TABLE user COLUMNS username UNIQUE",
		"DEFINE INDEX IF NOT EXISTS note_uid ON TABLE note COLUMNS uid UNIQUE",
		"DEFINE INDEX IF NOT EXISTS note_user ON TABLE note COLUMNS user",
		"DEFINE INDEX IF NOT EXISTS team_uid ON TABLE team COLUMNS uid UNIQUE",
		"DEFINE INDEX IF NOT EXISTS team_name ON TABLE team COLUMNS name UNIQUE",
	}
	for _, stmt := range statements {
		if _, err := surrealdb.Query[any](ctx, s.db, stmt, nil); err != nil {
			return fmt.Errorf("define schema: %w", err)
		}
	}
	return nil
}

// Ping runs a trivial query.
func (s *Store) Ping(ctx context.Context) error {
	_, err := surrealdb.Query[any](ctx, s.db, "RETURN true", nil)
	return err
}

// Close closes the connection.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Close(ctx)
}

// query runs sql and returns the result of its last statement.
func query[T any](ctx context.Context, db *surrealdb.DB, sql string, vars map[string]any) (T, error) {
	var zero T
	res, err := surrealdb.Query[T](ctx, db, sql, vars)
	if err != nil {
		return zero, fmt.Errorf("surreal error: %w", err)
	}
	if res == nil || len(*res) == 0 {
		return zero, nil
	}
	return (*res)[len(*res)-1].Result, nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.ErrMalformedID
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "already contains")
}

func formatTime(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
