package schedule

import (
	"context"
	"fmt"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger.With().Str("repo", "schedule").Logger()}
}

func (r *postgresRepo) ListActive(ctx context.Context) ([]domain.DeliverySchedule, error) {
	const q = `
SELECT id::text, name, day_of_week, cutoff_day, cutoff_time, lead_time_days, time_window, active, created_at
FROM delivery_schedules
WHERE active
ORDER BY day_of_week, name
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Error().Err(err).Msg("list active")
		return nil, err
	}
	defer rows.Close()

	var result []domain.DeliverySchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("list active: scan")
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("list active: rows")
		return nil, err
	}
	r.logger.Debug().Int("count", len(result)).Msg("list active")
	return result, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, s domain.DeliverySchedule) (*domain.DeliverySchedule, error) {
	const q = `
INSERT INTO delivery_schedules (id, name, day_of_week, cutoff_day, cutoff_time, lead_time_days, time_window, active)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (name) DO UPDATE SET
    day_of_week = EXCLUDED.day_of_week,
    cutoff_day = EXCLUDED.cutoff_day,
    cutoff_time = EXCLUDED.cutoff_time,
    lead_time_days = EXCLUDED.lead_time_days,
    time_window = EXCLUDED.time_window,
    active = EXCLUDED.active
RETURNING id::text, created_at
`
	res := s
	err := r.pool.QueryRow(ctx, q,
		s.ID,
		s.Name,
		repository.WeekdayColumn(s.DayOfWeek),
		repository.WeekdayColumn(s.CutoffDay),
		s.CutoffTime.String(),
		s.LeadTimeDays,
		s.TimeWindow,
		s.Active,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("name", s.Name).Msg("upsert")
		return nil, err
	}
	if s.ID != "" && res.ID != s.ID {
		return nil, fmt.Errorf("schedule repo: id mismatch for name=%s existing_id=%s import_id=%s", s.Name, res.ID, s.ID)
	}
	r.logger.Debug().Str("name", res.Name).Str("id", res.ID).Msg("upserted")
	return &res, nil
}

func scanSchedule(row pgx.Row) (domain.DeliverySchedule, error) {
	var (
		s              domain.DeliverySchedule
		day, cutoffDay int16
		cutoffTime     string
	)
	if err := row.Scan(&s.ID, &s.Name, &day, &cutoffDay, &cutoffTime, &s.LeadTimeDays, &s.TimeWindow, &s.Active, &s.CreatedAt); err != nil {
		return s, err
	}
	var err error
	if s.DayOfWeek, err = repository.ScanWeekday(day); err != nil {
		return s, fmt.Errorf("schedule %s: day_of_week: %w", s.ID, err)
	}
	if s.CutoffDay, err = repository.ScanWeekday(cutoffDay); err != nil {
		return s, fmt.Errorf("schedule %s: cutoff_day: %w", s.ID, err)
	}
	if s.CutoffTime, err = businesstime.ParseTimeOfDay(cutoffTime); err != nil {
		return s, fmt.Errorf("schedule %s: cutoff_time: %w", s.ID, err)
	}
	return s, nil
}
