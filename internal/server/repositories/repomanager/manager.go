// Package repomanager opens the PostgreSQL pool, vends repositories bound to
// it and applies the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/BakeNecko/sidus-heroes/internal/dbx"
	"github.com/BakeNecko/sidus-heroes/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Users(db dbx.DBTX) users.Repository
	DB() *sql.DB
	Close() error
}
