package closure

import (
	"context"

	"bakery-fulfillment/internal/businesstime"
	"bakery-fulfillment/internal/domain"
)

type Repository interface {
	// ListFrom returns closures on or after from that affect the given type.
	ListFrom(ctx context.Context, from businesstime.Date, affects domain.FulfillmentType) ([]domain.CalendarClosure, error)
	Upsert(ctx context.Context, c domain.CalendarClosure) (*domain.CalendarClosure, error)
}
