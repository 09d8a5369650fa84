package productrule

import (
	"context"

	"bakery-fulfillment/internal/domain"
)

type Repository interface {
	// Get returns domain.ErrNotFound when the product has no rule.
	Get(ctx context.Context, productID string) (*domain.ProductDeliveryRule, error)
	GetMany(ctx context.Context, productIDs []string) (map[string]*domain.ProductDeliveryRule, error)
	Upsert(ctx context.Context, rule domain.ProductDeliveryRule) (*domain.ProductDeliveryRule, error)
}
