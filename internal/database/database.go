package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Dialect identifies the SQL flavour behind a connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// SQLite's built-in LOWER only folds ASCII letters.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, unicodeLower)
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unicode_lower: unsupported argument %T", v)
	}
}

// Lower wraps expr in the dialect's Unicode-aware lowercase function.
func (d Dialect) Lower(expr string) string {
	if d == SQLite {
		return "unicode_lower(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// New opens a connection pool for the dialect and verifies it with a ping.
func New(ctx context.Context, dialect Dialect, dataSourceName string) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case SQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dataSourceName))
		if err != nil {
			return nil, err
		}
		// SQLite serialises writers, and every connection to :memory: would
		// otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	case Postgres:
		db, err = sql.Open("pgx", dataSourceName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// sqliteDSN enables foreign keys and a round-trippable time format.
func sqliteDSN(name string) string {
	sep := "?"
	if strings.Contains(name, "?") {
		sep = "&"
	}
	return name + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	gooseDialect := "sqlite3"
	if dialect == Postgres {
		gooseDialect = "postgres"
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
