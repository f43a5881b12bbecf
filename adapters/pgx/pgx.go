package pgx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lborres/evently/core"
)

// DB is the subset of *pgxpool.Pool the adapter uses
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Adapter struct {
	db DB
}

var _ core.AccountStore = (*Adapter)(nil)

func New(db DB) *Adapter {
	return &Adapter{
		db: db,
	}
}
