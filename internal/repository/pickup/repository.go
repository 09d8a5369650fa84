package pickup

import (
	"context"

	"bakery-fulfillment/internal/domain"
)

type Repository interface {
	ListActive(ctx context.Context) ([]domain.PickupLocation, error)
	GetByID(ctx context.Context, id string) (*domain.PickupLocation, error)
	Upsert(ctx context.Context, l domain.PickupLocation) (*domain.PickupLocation, error)
}
