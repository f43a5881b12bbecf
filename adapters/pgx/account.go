package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/lborres/evently/core"
)

const uniqueViolation = "23505"

const selectAccount = `SELECT id, name, email, password_hash, created_at, updated_at FROM public.accounts`

func (a *Adapter) FindByEmail(ctx context.Context, email string) (*core.Account, error) {
	return a.findOne(ctx, selectAccount+` WHERE email = $1`, email)
}

func (a *Adapter) FindByID(ctx context.Context, id string) (*core.Account, error) {
	return a.findOne(ctx, selectAccount+` WHERE id = $1`, id)
}

func (a *Adapter) findOne(ctx context.Context, query string, arg string) (*core.Account, error) {
	acc := &core.Account{}
	err := a.db.QueryRow(ctx, query, arg).Scan(
		&acc.ID, &acc.Name, &acc.Email, &acc.PasswordHash, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("%w: query account: %w", core.ErrPersistence, err)
	}
	return acc, nil
}

func (a *Adapter) Create(ctx context.Context, acc *core.Account) error {
	query := `INSERT INTO public.accounts (id, name, email, password_hash, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := a.db.Exec(ctx, query,
		acc.ID, acc.Name, acc.Email, acc.PasswordHash, acc.CreatedAt, acc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.ErrAccountExists
		}
		return fmt.Errorf("%w: insert account: %w", core.ErrPersistence, err)
	}
	return nil
}

func (a *Adapter) Save(ctx context.Context, acc *core.Account) error {
	query := `UPDATE public.accounts SET name = $1, email = $2, password_hash = $3, updated_at = $4
	          WHERE id = $5`

	tag, err := a.db.Exec(ctx, query,
		acc.Name, acc.Email, acc.PasswordHash, acc.UpdatedAt, acc.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return core.ErrAccountExists
		}
		return fmt.Errorf("%w: update account: %w", core.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrAccountNotFound
	}
	return nil
}
