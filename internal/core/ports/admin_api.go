package ports

import (
	"context"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Name    string
	Content []byte
}

// ApplyOfferInput selects the offer to apply; an empty Category applies it
// to every product.
type ApplyOfferInput struct {
	OfferID  int64  `json:"offerId"`
	Category string `json:"category,omitempty"`
}

// AdminAPI is the backend's back-office surface.
type AdminAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	AddProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UploadImages(ctx context.Context, files []UploadFile) ([]string, error)

	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	ListUsers(ctx context.Context) ([]domain.UserRecord, error)
	Stats(ctx context.Context) (*domain.Stats, error)

	ListOffers(ctx context.Context) ([]domain.Offer, error)
	CreateOffer(ctx context.Context, in domain.OfferInput) (*domain.Offer, error)
	ApplyOffer(ctx context.Context, in ApplyOfferInput) error

	ListDesigns(ctx context.Context) ([]domain.CustomDesign, error)
	UpdateDesignStatus(ctx context.Context, id int64, status domain.DesignStatus, adminNote string) error
}
