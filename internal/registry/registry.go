// Package registry reads the administrative configuration the planners
// consume: schedules, pickup locations, closures, product rules, zones and
// fee rules. Registry reads straight from the repositories; Cached fronts
// any Source with Redis.
package registry

import (
	"context"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
	"bakery-fulfillment/internal/repository/closure"
	"bakery-fulfillment/internal/repository/feerule"
	"bakery-fulfillment/internal/repository/pickup"
	"bakery-fulfillment/internal/repository/productrule"
	"bakery-fulfillment/internal/repository/schedule"
	"bakery-fulfillment/internal/repository/zone"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Source is the read side used by the fulfillment service.
type Source interface {
	ListActiveDeliverySchedules(ctx context.Context) ([]domain.DeliverySchedule, error)
	ListActivePickupLocations(ctx context.Context) ([]domain.PickupLocation, error)
	GetPickupLocation(ctx context.Context, id string) (*domain.PickupLocation, error)
	ListClosures(ctx context.Context, from businesstime.Date, affects domain.FulfillmentType) ([]domain.CalendarClosure, error)
	// GetProductDeliveryRules omits products without a rule.
	GetProductDeliveryRules(ctx context.Context, productIDs []string) (map[string]*domain.ProductDeliveryRule, error)
	ListActiveDeliveryZones(ctx context.Context) ([]domain.DeliveryZone, error)
	ListActiveFeeRules(ctx context.Context) ([]domain.FeeRule, error)
}

type Registry struct {
	Schedules schedule.Repository
	Pickups   pickup.Repository
	Closures  closure.Repository
	Rules     productrule.Repository
	Zones     zone.Repository
	FeeRules  feerule.Repository
}

var _ Source = (*Registry)(nil)

// NewPostgres wires every repository against pool.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) *Registry {
	return &Registry{
		Schedules: schedule.NewPostgres(pool, logger),
		Pickups:   pickup.NewPostgres(pool, logger),
		Closures:  closure.NewPostgres(pool, logger),
		Rules:     productrule.NewPostgres(pool, logger),
		Zones:     zone.NewPostgres(pool, logger),
		FeeRules:  feerule.NewPostgres(pool, logger),
	}
}

func (r *Registry) ListActiveDeliverySchedules(ctx context.Context) ([]domain.DeliverySchedule, error) {
	return r.Schedules.ListActive(ctx)
}

func (r *Registry) ListActivePickupLocations(ctx context.Context) ([]domain.PickupLocation, error) {
	return r.Pickups.ListActive(ctx)
}

func (r *Registry) GetPickupLocation(ctx context.Context, id string) (*domain.PickupLocation, error) {
	return r.Pickups.GetByID(ctx, id)
}

func (r *Registry) ListClosures(ctx context.Context, from businesstime.Date, affects domain.FulfillmentType) ([]domain.CalendarClosure, error) {
	return r.Closures.ListFrom(ctx, from, affects)
}

func (r *Registry) GetProductDeliveryRules(ctx context.Context, productIDs []string) (map[string]*domain.ProductDeliveryRule, error) {
	return r.Rules.GetMany(ctx, productIDs)
}

func (r *Registry) ListActiveDeliveryZones(ctx context.Context) ([]domain.DeliveryZone, error) {
	return r.Zones.ListActive(ctx)
}

func (r *Registry) ListActiveFeeRules(ctx context.Context) ([]domain.FeeRule, error) {
	return r.FeeRules.ListActive(ctx)
}
