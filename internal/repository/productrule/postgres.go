package productrule

import (
	"context"
	"errors"
	"fmt"

	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const selectColumns = `
SELECT product_id, allowed_delivery_days, minimum_lead_time_days, allow_pickup, allow_delivery
FROM product_delivery_rules
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "productrule").Logger()}
}

func (r *postgresRepo) Get(ctx context.Context, productID string) (*domain.ProductDeliveryRule, error) {
	rule, err := scanRule(r.pool.QueryRow(ctx, selectColumns+`WHERE product_id = $1`, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("product_id", productID).Msg("get")
		return nil, err
	}
	return &rule, nil
}

// GetMany omits products with no rule from the result.
func (r *postgresRepo) GetMany(ctx context.Context, productIDs []string) (map[string]*domain.ProductDeliveryRule, error) {
	result := make(map[string]*domain.ProductDeliveryRule, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, selectColumns+`WHERE product_id = ANY($1)`, productIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("products", len(productIDs)).Msg("get many")
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result[rule.ProductID] = &rule
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("get many: rows")
		return nil, err
	}
	r.logger.Debug().Int("products", len(productIDs)).Int("rules", len(result)).Msg("get many")
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, rule domain.ProductDeliveryRule) (*domain.ProductDeliveryRule, error) {
	const q = `
INSERT INTO product_delivery_rules (product_id, allowed_delivery_days, minimum_lead_time_days, allow_pickup, allow_delivery)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (product_id) DO UPDATE SET
    allowed_delivery_days = EXCLUDED.allowed_delivery_days,
    minimum_lead_time_days = EXCLUDED.minimum_lead_time_days,
    allow_pickup = EXCLUDED.allow_pickup,
    allow_delivery = EXCLUDED.allow_delivery
`
	if rule.ProductID == "" {
		return nil, fmt.Errorf("%w: product rule without product id", domain.ErrInvalidInput)
	}
	_, err := r.pool.Exec(ctx, q,
		rule.ProductID,
		repository.WeekdaysColumn(rule.AllowedDeliveryDays),
		rule.MinimumLeadTimeDays,
		rule.AllowPickup,
		rule.AllowDelivery,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", rule.ProductID).Msg("upsert")
		return nil, err
	}
	r.logger.Debug().Str("product_id", rule.ProductID).Msg("upserted")
	res := rule
	return &res, nil
}

func scanRule(row pgx.Row) (domain.ProductDeliveryRule, error) {
	var (
		rule domain.ProductDeliveryRule
		days []int16
	)
	if err := row.Scan(&rule.ProductID, &days, &rule.MinimumLeadTimeDays, &rule.AllowPickup, &rule.AllowDelivery); err != nil {
		return rule, err
	}
	var err error
	if rule.AllowedDeliveryDays, err = repository.ScanWeekdays(days); err != nil {
		return rule, fmt.Errorf("product rule %s: allowed_delivery_days: %w", rule.ProductID, err)
	}
	return rule, nil
}
