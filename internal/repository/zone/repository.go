package zone

import (
	"context"

	"bakery-fulfillment/internal/domain"
)

type Repository interface {
	// ListActive returns active zones ordered by descending priority, then name.
	ListActive(ctx context.Context) ([]domain.DeliveryZone, error)
	Upsert(ctx context.Context, z domain.DeliveryZone) (*domain.DeliveryZone, error)
}
