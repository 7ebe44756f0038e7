// internal/core/ports/database.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of the pgx pool API the repositories depend on.
// Both *pgxpool.Pool (via the db.Database wrapper) and pgxmock satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Database is the full database port used by wiring and health checks.
type Database interface {
	Querier
	Close()
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
}
