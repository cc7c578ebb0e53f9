package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
)

type productsBody struct {
	Products []domain.Product `json:"products"`
}

type productBody struct {
	Product *domain.Product `json:"product"`
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fail(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

func (s *Server) listProducts(c echo.Context) error {
	s.store.mu.Lock()
	products := s.store.productList(true)
	s.store.mu.Unlock()
	return c.JSON(http.StatusOK, productsBody{Products: products})
}

func (s *Server) getProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.store.mu.Lock()
	p, ok := s.store.products[id]
	var out domain.Product
	if ok {
		out = *p
	}
	s.store.mu.Unlock()
	if !ok || !out.IsActive {
		return errProductNotFound
	}
	return c.JSON(http.StatusOK, productBody{Product: &out})
}

// searchProducts matches q against name, brand, category and description.
func (s *Server) searchProducts(c echo.Context) error {
	q := strings.ToLower(strings.TrimSpace(c.QueryParam("q")))
	if q == "" {
		return fail(http.StatusBadRequest, "Search query is required")
	}
	s.store.mu.Lock()
	all := s.store.productList(true)
	s.store.mu.Unlock()

	out := make([]domain.Product, 0)
	for _, p := range all {
		haystack := strings.ToLower(strings.Join([]string{p.Name, p.Brand, p.Category, p.Description}, " "))
		if strings.Contains(haystack, q) {
			out = append(out, p)
		}
	}
	return c.JSON(http.StatusOK, productsBody{Products: out})
}

func (s *Server) productsByCategory(c echo.Context) error {
	category := c.Param("category")
	s.store.mu.Lock()
	all := s.store.productList(true)
	s.store.mu.Unlock()

	out := make([]domain.Product, 0)
	for _, p := range all {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return c.JSON(http.StatusOK, productsBody{Products: out})
}
