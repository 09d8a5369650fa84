package closure

import (
	"context"
	"fmt"
	"time"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "closure").Logger()}
}

func (r *postgresRepo) ListFrom(ctx context.Context, from businesstime.Date, affects domain.FulfillmentType) ([]domain.CalendarClosure, error) {
	var filter string
	switch affects {
	case domain.FulfillmentDelivery:
		filter = "closed_for_delivery"
	case domain.FulfillmentPickup:
		filter = "closed_for_pickup"
	default:
		return nil, fmt.Errorf("%w: fulfillment type %q", domain.ErrInvalidInput, affects)
	}
	q := `
SELECT id::text, closed_on, reason, closed_for_delivery, closed_for_pickup
FROM calendar_closures
WHERE closed_on >= $1::date AND ` + filter + `
ORDER BY closed_on
`
	rows, err := r.pool.Query(ctx, q, from.String())
	if err != nil {
		r.logger.Error().Err(err).Str("affects", string(affects)).Msg("list")
		return nil, err
	}
	defer rows.Close()

	var result []domain.CalendarClosure
	for rows.Next() {
		var (
			c  domain.CalendarClosure
			on time.Time
		)
		if err := rows.Scan(&c.ID, &on, &c.Reason, &c.ClosedForDelivery, &c.ClosedForPickup); err != nil {
			return nil, err
		}
		c.Date = businesstime.DateOf(on)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("list: rows")
		return nil, err
	}
	r.logger.Debug().Str("from", from.String()).Str("affects", string(affects)).Int("count", len(result)).Msg("list")
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.CalendarClosure) (*domain.CalendarClosure, error) {
	const q = `
INSERT INTO calendar_closures (id, closed_on, reason, closed_for_delivery, closed_for_pickup)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2::date, $3, $4, $5)
ON CONFLICT (closed_on) DO UPDATE SET
    reason = EXCLUDED.reason,
    closed_for_delivery = EXCLUDED.closed_for_delivery,
    closed_for_pickup = EXCLUDED.closed_for_pickup
RETURNING id::text
`
	if c.Date.IsZero() {
		return nil, fmt.Errorf("%w: closure date is empty", domain.ErrInvalidInput)
	}
	res := c
	if err := r.pool.QueryRow(ctx, q, c.ID, c.Date.String(), c.Reason, c.ClosedForDelivery, c.ClosedForPickup).Scan(&res.ID); err != nil {
		r.logger.Error().Err(err).Str("date", c.Date.String()).Msg("upsert")
		return nil, err
	}
	r.logger.Debug().Str("date", res.Date.String()).Str("id", res.ID).Msg("upserted")
	return &res, nil
}
