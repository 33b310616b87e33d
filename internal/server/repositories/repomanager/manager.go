// Package repomanager selects the storage dialect, runs its goose
// migrations and vends repositories bound to a DB handle or transaction.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/dbx"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/filex"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}

// gooseUp is a seam for testing; it applies every pending migration in fsys.
var gooseUp = func(ctx context.Context, dialect goose.Dialect, db *sql.DB, fsys fs.FS) error {
	p, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Open connects to dsn, picking the driver from its form: postgres:// and
// postgresql:// URLs use pgx, anything else is treated as an SQLite path
// (optionally prefixed with "sqlite:" or "file:"). The caller owns the
// returned *sql.DB.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	if dsn == "" {
		return nil, nil, fmt.Errorf("empty database dsn")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		return db, NewPostgresRepositoryManager(), nil
	}

	path := sqlitePath(dsn)
	if path != ":memory:" {
		if _, err := filex.EnsureParentDir(path); err != nil {
			return nil, nil, err
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer; avoids SQLITE_BUSY under concurrent registrations
	db.SetMaxOpenConns(1)

	return db, NewSQLiteRepositoryManager(), nil
}

// sqlitePath strips the scheme and query from an SQLite DSN.
func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "sqlite://")
	path = strings.TrimPrefix(path, "sqlite:")
	path = strings.TrimPrefix(path, "file:")
	path, _, _ = strings.Cut(path, "?")
	return path
}

// sqliteDSN converts a "sqlite:" DSN into what the modernc driver accepts.
func sqliteDSN(dsn string) string {
	if strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	return strings.TrimPrefix(dsn, "sqlite:")
}
