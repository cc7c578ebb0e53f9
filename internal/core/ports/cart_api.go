package ports

import (
	"context"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// CartAPI is the backend's cart surface. Every call requires a session.
type CartAPI interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, productID int64, size domain.Size, quantity int) error
	UpdateItem(ctx context.Context, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, itemID int64) error
}
