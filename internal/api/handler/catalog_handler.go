package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/service"
)

// CatalogBrowser is the catalog surface the console drives.
type CatalogBrowser interface {
	Browse(ctx context.Context, q service.BrowseQuery) ([]domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	QuickAdd(ctx context.Context, productID int64) error
}

type CatalogHandler struct {
	catalog CatalogBrowser
}

func NewCatalogHandler(catalog CatalogBrowser) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type browseQuery struct {
	Category string `query:"category"`
	Search   string `query:"q"`
	Sort     string `query:"sort" validate:"omitempty,oneof=asc desc"`
}

type productsResponse struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
}

// List browses the catalog with an optional category, search text and price sort.
//
// @Summary      Browse products
// @Tags         catalog
// @Produce      json
// @Param        category  query     string  false  "Category, or All Products"
// @Param        q         query     string  false  "Search text"
// @Param        sort      query     string  false  "Price sort: asc or desc"
// @Success      200       {object}  productsResponse
// @Failure      400       {object}  ErrorBody
// @Router       /v1/products [get]
func (h *CatalogHandler) List(c echo.Context) error {
	var q browseQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	products, err := h.catalog.Browse(c.Request().Context(), service.BrowseQuery{
		Category: q.Category,
		Search:   q.Search,
		Sort:     service.SortOrder(q.Sort),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productsResponse{Products: products, Count: len(products)})
}

// Get returns one product.
//
// @Summary      Product detail
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  ErrorBody
// @Router       /v1/products/{id} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.catalog.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// QuickAdd puts one unit of the first in-stock size into the cart.
//
// @Summary      Quick add to cart
// @Tags         catalog
// @Produce      json
// @Param        id   path      int  true  "Product id"
// @Success      200  {object}  message
// @Failure      401  {object}  ErrorBody
// @Failure      409  {object}  ErrorBody
// @Router       /v1/products/{id}/quick-add [post]
func (h *CatalogHandler) QuickAdd(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.QuickAdd(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message{Message: "Added to cart!"})
}
