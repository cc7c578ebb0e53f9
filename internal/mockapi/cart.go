package mockapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
)

type cartBody struct {
	Cart domain.Cart `json:"cart"`
}

type addToCartRequest struct {
	ProductID int64       `json:"productId"`
	Size      domain.Size `json:"size"`
	Quantity  int         `json:"quantity"`
}

type updateCartRequest struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

func (s *Server) getCart(c echo.Context) error {
	s.store.mu.Lock()
	cart := s.store.cartOf(userID(c))
	s.store.mu.Unlock()
	return c.JSON(http.StatusOK, cartBody{Cart: cart})
}

// addToCart merges into the existing (product, size) line when there is one.
func (s *Server) addToCart(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if req.Quantity < 1 || !req.Size.Valid() {
		return errBadLine
	}
	uid := userID(c)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.products[req.ProductID]
	if !ok || !p.IsActive {
		return errProductNotFound
	}
	if !p.HasSize(req.Size) {
		return errBadLine
	}

	lines := s.store.carts[uid]
	for i := range lines {
		if lines[i].productID == req.ProductID && lines[i].size == req.Size {
			if p.Stock(req.Size) < lines[i].quantity+req.Quantity {
				return errInsufficientStock
			}
			lines[i].quantity += req.Quantity
			return c.JSON(http.StatusOK, messageBody{Message: "Cart updated"})
		}
	}
	if p.Stock(req.Size) < req.Quantity {
		return errInsufficientStock
	}
	s.store.carts[uid] = append(lines, cartLine{id: s.store.id(), productID: req.ProductID, size: req.Size, quantity: req.Quantity})
	return c.JSON(http.StatusCreated, messageBody{Message: "Added to cart"})
}

func (s *Server) updateCart(c echo.Context) error {
	var req updateCartRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if req.Quantity < 1 {
		return errBadLine
	}
	uid := userID(c)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	lines := s.store.carts[uid]
	for i := range lines {
		if lines[i].id != req.ItemID {
			continue
		}
		if p := s.store.products[lines[i].productID]; p == nil || p.Stock(lines[i].size) < req.Quantity {
			return errInsufficientStock
		}
		lines[i].quantity = req.Quantity
		return c.JSON(http.StatusOK, messageBody{Message: "Cart updated"})
	}
	return fail(http.StatusNotFound, "Cart item not found")
}

func (s *Server) removeFromCart(c echo.Context) error {
	itemID, err := pathID(c, "itemId")
	if err != nil {
		return err
	}
	uid := userID(c)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	lines := s.store.carts[uid]
	for i := range lines {
		if lines[i].id == itemID {
			s.store.carts[uid] = append(lines[:i], lines[i+1:]...)
			return c.JSON(http.StatusOK, messageBody{Message: "Item removed"})
		}
	}
	return fail(http.StatusNotFound, "Cart item not found")
}
