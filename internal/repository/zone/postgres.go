package zone

import (
	"context"
	"fmt"

	"bakery-fulfillment/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "zone").Logger()}
}

func (r *postgresRepo) ListActive(ctx context.Context) ([]domain.DeliveryZone, error) {
	const q = `
SELECT id::text, name, zip_codes, fee_amount_cents, priority, active, created_at
FROM delivery_zones
WHERE active
ORDER BY priority DESC, name
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error().Err(err).Msg("list active")
		return nil, err
	}
	defer rows.Close()

	var result []domain.DeliveryZone
	for rows.Next() {
		var z domain.DeliveryZone
		if err := rows.Scan(&z.ID, &z.Name, &z.ZIPCodes, &z.FeeAmountCents, &z.Priority, &z.Active, &z.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, z)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("list active: rows")
		return nil, err
	}
	r.logger.Debug().Int("count", len(result)).Msg("list active")
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, z domain.DeliveryZone) (*domain.DeliveryZone, error) {
	const q = `
INSERT INTO delivery_zones (id, name, zip_codes, fee_amount_cents, priority, active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6)
ON CONFLICT (name) DO UPDATE SET
    zip_codes = EXCLUDED.zip_codes,
    fee_amount_cents = EXCLUDED.fee_amount_cents,
    priority = EXCLUDED.priority,
    active = EXCLUDED.active
RETURNING id::text, created_at
`
	zips := z.ZIPCodes
	if zips == nil {
		zips = []string{}
	}
	res := z
	err := r.pool.QueryRow(ctx, q, z.ID, z.Name, zips, z.FeeAmountCents, z.Priority, z.Active).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", z.Name).Msg("upsert")
		return nil, err
	}
	if z.ID != "" && res.ID != z.ID {
		return nil, fmt.Errorf("zone repo: id mismatch for name=%s existing_id=%s import_id=%s", z.Name, res.ID, z.ID)
	}
	r.logger.Debug().Str("name", res.Name).Str("id", res.ID).Int("zips", len(res.ZIPCodes)).Msg("upserted")
	return &res, nil
}
