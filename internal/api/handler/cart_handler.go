package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// CartManager is the cart surface the console drives.
type CartManager interface {
	Snapshot() domain.CartSummary
	Refresh(ctx context.Context)
	AddItem(ctx context.Context, productID int64, size domain.Size, quantity int) error
	UpdateItem(ctx context.Context, itemID int64, quantity int) error
	RemoveItem(ctx context.Context, itemID int64) error
}

type CartHandler struct {
	cart CartManager
}

func NewCartHandler(cart CartManager) *CartHandler {
	return &CartHandler{cart: cart}
}

type addItemRequest struct {
	ProductID int64       `json:"productId" validate:"gt=0"`
	Size      domain.Size `json:"size"`
	Quantity  int         `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// Get returns the local cart view; refresh=true reloads it from the backend first.
//
// @Summary      Cart
// @Tags         cart
// @Produce      json
// @Param        refresh  query     bool  false  "Reload from the backend"
// @Success      200      {object}  domain.CartSummary
// @Router       /v1/cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	if c.QueryParam("refresh") == "true" {
		h.cart.Refresh(c.Request().Context())
	}
	return c.JSON(http.StatusOK, h.cart.Snapshot())
}

// Add adds a product line. Quantity and size are checked before any network call.
//
// @Summary      Add to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addItemRequest  true  "Line to add"
// @Success      200   {object}  domain.CartSummary
// @Failure      400   {object}  ErrorBody
// @Failure      401   {object}  ErrorBody
// @Router       /v1/cart/items [post]
func (h *CartHandler) Add(c echo.Context) error {
	var req addItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.cart.AddItem(c.Request().Context(), req.ProductID, req.Size, req.Quantity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.cart.Snapshot())
}

// Update sets the quantity of a cart line.
//
// @Summary      Update cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        itemId  path      int                true  "Cart item id"
// @Param        body    body      updateItemRequest  true  "New quantity"
// @Success      200     {object}  domain.CartSummary
// @Failure      400     {object}  ErrorBody
// @Router       /v1/cart/items/{itemId} [put]
func (h *CartHandler) Update(c echo.Context) error {
	id, err := paramID(c, "itemId")
	if err != nil {
		return err
	}
	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := h.cart.UpdateItem(c.Request().Context(), id, req.Quantity); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.cart.Snapshot())
}

// Remove deletes a cart line. Removing a line that is already gone succeeds.
//
// @Summary      Remove cart line
// @Tags         cart
// @Produce      json
// @Param        itemId  path      int  true  "Cart item id"
// @Success      200     {object}  domain.CartSummary
// @Router       /v1/cart/items/{itemId} [delete]
func (h *CartHandler) Remove(c echo.Context) error {
	id, err := paramID(c, "itemId")
	if err != nil {
		return err
	}
	if err := h.cart.RemoveItem(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.cart.Snapshot())
}
