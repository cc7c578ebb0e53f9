package ports

import (
	"context"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// CatalogAPI is the backend's public product surface.
type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
}
