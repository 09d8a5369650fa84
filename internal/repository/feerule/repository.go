package feerule

import (
	"context"

	"bakery-fulfillment/internal/domain"
)

type Repository interface {
	ListActive(ctx context.Context) ([]domain.FeeRule, error)
	Upsert(ctx context.Context, rule domain.FeeRule) (*domain.FeeRule, error)
}
