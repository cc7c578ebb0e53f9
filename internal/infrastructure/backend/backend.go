// Package backend implements the core ports on top of the gateway client,
// one adapter per backend surface.
package backend

import (
	"context"

	"github.com/pulsepr/storefront/internal/infrastructure/gateway"
)

// Doer is the gateway call used by every adapter.
type Doer interface {
	Do(ctx context.Context, r gateway.Request, out any) error
}

// Backend bundles every adapter over one gateway.
type Backend struct {
	Auth    *AuthClient
	Catalog *CatalogClient
	Cart    *CartClient
	Payment *PaymentClient
	Account *AccountClient
	Admin   *AdminClient
}

func New(c Doer) *Backend {
	return &Backend{
		Auth:    NewAuthClient(c),
		Catalog: NewCatalogClient(c),
		Cart:    NewCartClient(c),
		Payment: NewPaymentClient(c),
		Account: NewAccountClient(c),
		Admin:   NewAdminClient(c),
	}
}
