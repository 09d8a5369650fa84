package pickup

import (
	"context"
	"errors"
	"fmt"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const selectColumns = `
SELECT id::text, name, address, pickup_days, time_window, requires_preorder, cutoff_day, cutoff_time, lead_time_days, active, created_at
FROM pickup_locations
`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "pickup").Logger()}
}

func (r *postgresRepo) ListActive(ctx context.Context) ([]domain.PickupLocation, error) {
	rows, err := r.pool.Query(ctx, selectColumns+`WHERE active ORDER BY name`)
	if err != nil {
		r.logger.Error().Err(err).Msg("list active")
		return nil, err
	}
	defer rows.Close()

	var result []domain.PickupLocation
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("list active: scan")
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("list active: rows")
		return nil, err
	}
	r.logger.Debug().Int("count", len(result)).Msg("list active")
	return result, nil
}

// GetByID returns inactive locations too; the planner reports them as unavailable.
func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.PickupLocation, error) {
	l, err := scanLocation(r.pool.QueryRow(ctx, selectColumns+`WHERE id::text = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("id", id).Msg("get: not found")
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("id", id).Msg("get")
		return nil, err
	}
	return &l, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, l domain.PickupLocation) (*domain.PickupLocation, error) {
	const q = `
INSERT INTO pickup_locations (id, name, address, pickup_days, time_window, requires_preorder, cutoff_day, cutoff_time, lead_time_days, active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (name) DO UPDATE SET
    address = EXCLUDED.address,
    pickup_days = EXCLUDED.pickup_days,
    time_window = EXCLUDED.time_window,
    requires_preorder = EXCLUDED.requires_preorder,
    cutoff_day = EXCLUDED.cutoff_day,
    cutoff_time = EXCLUDED.cutoff_time,
    lead_time_days = EXCLUDED.lead_time_days,
    active = EXCLUDED.active
RETURNING id::text, created_at
`
	var (
		cutoffDay  *int16
		cutoffTime *string
	)
	if l.CutoffDay != nil {
		v := repository.WeekdayColumn(*l.CutoffDay)
		cutoffDay = &v
	}
	if l.CutoffTime != nil {
		v := l.CutoffTime.String()
		cutoffTime = &v
	}

	res := l
	err := r.pool.QueryRow(ctx, q,
		l.ID,
		l.Name,
		l.Address,
		repository.WeekdaysColumn(l.PickupDays),
		l.TimeWindow,
		l.RequiresPreorder,
		cutoffDay,
		cutoffTime,
		l.LeadTimeDays,
		l.Active,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", l.Name).Msg("upsert")
		return nil, err
	}
	if l.ID != "" && res.ID != l.ID {
		return nil, fmt.Errorf("pickup repo: id mismatch for name=%s existing_id=%s import_id=%s", l.Name, res.ID, l.ID)
	}
	r.logger.Debug().Str("name", res.Name).Str("id", res.ID).Msg("upserted")
	return &res, nil
}

func scanLocation(row pgx.Row) (domain.PickupLocation, error) {
	var (
		l          domain.PickupLocation
		days       []int16
		cutoffDay  *int16
		cutoffTime *string
	)
	err := row.Scan(&l.ID, &l.Name, &l.Address, &days, &l.TimeWindow, &l.RequiresPreorder, &cutoffDay, &cutoffTime, &l.LeadTimeDays, &l.Active, &l.CreatedAt)
	if err != nil {
		return l, err
	}
	if l.PickupDays, err = repository.ScanWeekdays(days); err != nil {
		return l, fmt.Errorf("pickup location %s: pickup_days: %w", l.ID, err)
	}
	if cutoffDay != nil {
		d, err := repository.ScanWeekday(*cutoffDay)
		if err != nil {
			return l, fmt.Errorf("pickup location %s: cutoff_day: %w", l.ID, err)
		}
		l.CutoffDay = &d
	}
	if cutoffTime != nil {
		tod, err := businesstime.ParseTimeOfDay(*cutoffTime)
		if err != nil {
			return l, fmt.Errorf("pickup location %s: cutoff_time: %w", l.ID, err)
		}
		l.CutoffTime = &tod
	}
	return l, nil
}
