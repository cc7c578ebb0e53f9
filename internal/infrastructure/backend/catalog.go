package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/infrastructure/gateway"
)

type CatalogClient struct {
	c Doer
}

func NewCatalogClient(c Doer) *CatalogClient { return &CatalogClient{c: c} }

var _ ports.CatalogAPI = (*CatalogClient)(nil)

type productsResponse struct {
	Products []domain.Product `json:"products"`
}

type productResponse struct {
	Product *domain.Product `json:"product"`
}

func (c *CatalogClient) list(ctx context.Context, r gateway.Request) ([]domain.Product, error) {
	var out productsResponse
	if err := c.c.Do(ctx, r, &out); err != nil {
		return nil, err
	}
	if out.Products == nil {
		return []domain.Product{}, nil
	}
	return out.Products, nil
}

func (c *CatalogClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.list(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/products"})
}

func (c *CatalogClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var out productResponse
	err := c.c.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/api/products/" + strconv.FormatInt(id, 10),
		Route:  "/api/products/:id",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, domain.ErrProductNotFound
	}
	return out.Product, nil
}

func (c *CatalogClient) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	return c.list(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/api/products/search",
		Query:  url.Values{"q": {query}},
	})
}

func (c *CatalogClient) ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return c.list(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/api/products/category/" + category,
		Route:  "/api/products/category/:category",
	})
}
