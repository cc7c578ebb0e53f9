package ports

import (
	"context"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// AccountAPI covers the signed-in user's own orders and custom designs.
type AccountAPI interface {
	MyOrders(ctx context.Context) ([]domain.Order, error)
	UploadDesign(ctx context.Context, in domain.DesignUpload) (*domain.CustomDesign, error)
	MyDesigns(ctx context.Context) ([]domain.CustomDesign, error)
	GetDesign(ctx context.Context, id int64) (*domain.CustomDesign, error)
	DeleteDesign(ctx context.Context, id int64) error
}
