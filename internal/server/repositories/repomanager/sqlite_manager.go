package repomanager

import (
	"context"
	"database/sql"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/dbx"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/migrations"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// SQLiteRepositoryManager vends SQLite-backed repositories.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return gooseUp(ctx, goose.DialectSQLite3, db, migrations.SQLite())
}
