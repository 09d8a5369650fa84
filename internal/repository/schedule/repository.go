package schedule

import (
	"context"

	"bakery-fulfillment/internal/domain"
)

type Repository interface {
	ListActive(ctx context.Context) ([]domain.DeliverySchedule, error)
	Upsert(ctx context.Context, s domain.DeliverySchedule) (*domain.DeliverySchedule, error)
}
