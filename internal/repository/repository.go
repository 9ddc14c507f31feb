package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DBTX is the subset of *pgxpool.Pool the repository needs.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	pool DBTX
}

func NewRepository(pool DBTX) *Repository {
	return &Repository{pool: pool}
}

// Ping connectivity
func (r *Repository) Ping(ctx context.Context) error {
	var one int
	if err := r.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
