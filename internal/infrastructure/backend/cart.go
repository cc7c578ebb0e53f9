package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/infrastructure/gateway"
)

type CartClient struct {
	c Doer
}

func NewCartClient(c Doer) *CartClient { return &CartClient{c: c} }

var _ ports.CartAPI = (*CartClient)(nil)

type cartResponse struct {
	Cart *domain.Cart `json:"cart"`
}

type addItemRequest struct {
	ProductID int64       `json:"productId"`
	Size      domain.Size `json:"size"`
	Quantity  int         `json:"quantity"`
}

type updateItemRequest struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// GetCart returns the server cart; a user without a cart gets an empty one.
func (c *CartClient) GetCart(ctx context.Context) (*domain.Cart, error) {
	var out cartResponse
	if err := c.c.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/cart"}, &out); err != nil {
		return nil, err
	}
	if out.Cart == nil {
		return &domain.Cart{}, nil
	}
	return out.Cart, nil
}

func (c *CartClient) AddItem(ctx context.Context, productID int64, size domain.Size, quantity int) error {
	return c.c.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/api/cart",
		Body:   addItemRequest{ProductID: productID, Size: size, Quantity: quantity},
	}, nil)
}

func (c *CartClient) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	return c.c.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   "/api/cart",
		Body:   updateItemRequest{ItemID: itemID, Quantity: quantity},
	}, nil)
}

func (c *CartClient) RemoveItem(ctx context.Context, itemID int64) error {
	return c.c.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   "/api/cart/" + strconv.FormatInt(itemID, 10),
		Route:  "/api/cart/:itemId",
	}, nil)
}
