package repomanager

import (
	"context"
	"database/sql"

	"github.com/andreacfromtheapp/random-word-api-sub000/internal/dbx"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/migrations"
	"github.com/andreacfromtheapp/random-word-api-sub000/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return gooseUp(ctx, goose.DialectPostgres, db, migrations.Postgres())
}
