package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UsageRepository define el contador atómico por (usuario, feature, periodo).
type UsageRepository interface {
	Increment(ctx context.Context, userID, feature, period string) (int, error)
	GetCount(ctx context.Context, userID, feature, period string) (int, error)
}

type PgUsageRepository struct {
	pool *pgxpool.Pool
}

func NewPgUsageRepository(pool *pgxpool.Pool) *PgUsageRepository {
	return &PgUsageRepository{pool: pool}
}

// Increment hace upsert atómico en una sola sentencia: dos requests
// concurrentes del mismo usuario nunca pierden un incremento.
func (r *PgUsageRepository) Increment(ctx context.Context, userID, feature, period string) (int, error) {
	const query = `
		INSERT INTO usage_counters (user_id, feature, period, count)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (user_id, feature, period)
		DO UPDATE SET count = usage_counters.count + 1
		RETURNING count
	`
	var count int
	err := r.pool.QueryRow(ctx, query, userID, feature, period).Scan(&count)
	return count, err
}

func (r *PgUsageRepository) GetCount(ctx context.Context, userID, feature, period string) (int, error) {
	const query = `
		SELECT count
		FROM usage_counters
		WHERE user_id = $1 AND feature = $2 AND period = $3
	`
	var count int
	err := r.pool.QueryRow(ctx, query, userID, feature, period).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return count, err
}
