package feerule

import (
	"context"

	"bakery-fulfillment/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "feerule").Logger()}
}

func (r *postgresRepo) ListActive(ctx context.Context) ([]domain.FeeRule, error) {
	const q = `
SELECT id::text, name, expression, fee_cents, priority, active, created_at
FROM delivery_fee_rules
WHERE active
ORDER BY priority DESC, name
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error().Err(err).Msg("list active")
		return nil, err
	}
	defer rows.Close()

	var result []domain.FeeRule
	for rows.Next() {
		var fr domain.FeeRule
		if err := rows.Scan(&fr.ID, &fr.Name, &fr.Expression, &fr.FeeCents, &fr.Priority, &fr.Active, &fr.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, fr)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("list active: rows")
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, rule domain.FeeRule) (*domain.FeeRule, error) {
	const q = `
INSERT INTO delivery_fee_rules (id, name, expression, fee_cents, priority, active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET
    expression = EXCLUDED.expression,
    fee_cents = EXCLUDED.fee_cents,
    priority = EXCLUDED.priority,
    active = EXCLUDED.active
RETURNING id::text, created_at
`
	res := rule
	err := r.pool.QueryRow(ctx, q, rule.ID, rule.Name, rule.Expression, rule.FeeCents, rule.Priority, rule.Active).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", rule.Name).Msg("upsert")
		return nil, err
	}
	r.logger.Debug().Str("name", res.Name).Str("id", res.ID).Msg("upserted")
	return &res, nil
}
