package ports

import (
	"context"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// PaymentAPI is the backend's payment surface.
type PaymentAPI interface {
	// CreateIntent asks the backend to price the items and open a payment intent.
	CreateIntent(ctx context.Context, items []domain.OrderItem, address string) (*domain.PaymentIntent, error)
	// VerifyPayment asks the backend to confirm a payment the widget captured.
	VerifyPayment(ctx context.Context, in domain.VerifyPaymentInput) error
}
