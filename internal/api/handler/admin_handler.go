package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
)

// AdminManager is the back-office surface the console drives.
type AdminManager interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	AddProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	UploadImages(ctx context.Context, files []ports.UploadFile) ([]string, error)

	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error

	ListUsers(ctx context.Context) ([]domain.UserRecord, error)
	Stats(ctx context.Context) (*domain.Stats, error)

	ListOffers(ctx context.Context) ([]domain.Offer, error)
	CreateOffer(ctx context.Context, in domain.OfferInput) (*domain.Offer, error)
	ApplyOffer(ctx context.Context, offerID int64, category string) error

	ListDesigns(ctx context.Context) ([]domain.CustomDesign, error)
	UpdateDesignStatus(ctx context.Context, id int64, status domain.DesignStatus, adminNote string) error
	DesignToProductDraft(d domain.CustomDesign) (domain.ProductInput, error)
}

type AdminHandler struct {
	admin AdminManager
}

func NewAdminHandler(admin AdminManager) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// --- Request / Response types ---

type orderStatusRequest struct {
	OrderStatus domain.OrderStatus `json:"orderStatus"`
}

type designStatusRequest struct {
	Status    domain.DesignStatus `json:"status"`
	AdminNote string              `json:"adminNote"`
}

type applyOfferRequest struct {
	OfferID  int64  `json:"offerId"`
	Category string `json:"category"`
}

type usersResponse struct {
	Users []domain.UserRecord `json:"users"`
}

type offersResponse struct {
	Offers []domain.Offer `json:"offers"`
}

type imagesResponse struct {
	Images []string `json:"images"`
}

type draftResponse struct {
	Draft   domain.ProductInput `json:"draft"`
	Product *domain.Product     `json:"product,omitempty"`
}

// --- Products ---

// Products lists every product, including inactive ones.
//
// @Summary      Admin products
// @Tags         admin
// @Produce      json
// @Success      200  {object}  productsResponse
// @Failure      403  {object}  ErrorBody
// @Router       /v1/admin/products [get]
func (h *AdminHandler) Products(c echo.Context) error {
	products, err := h.admin.ListProducts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productsResponse{Products: products, Count: len(products)})
}

// AddProduct creates a product.
//
// @Summary      Create product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ProductInput  true  "Product"
// @Success      201   {object}  domain.Product
// @Failure      400   {object}  ErrorBody
// @Router       /v1/admin/products [post]
func (h *AdminHandler) AddProduct(c echo.Context) error {
	var in domain.ProductInput
	if err := c.Bind(&in); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	p, err := h.admin.AddProduct(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdateProduct replaces a product.
//
// @Summary      Update product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Product id"
// @Param        body  body      domain.ProductInput  true  "Product"
// @Success      200   {object}  domain.Product
// @Router       /v1/admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in domain.ProductInput
	if err := c.Bind(&in); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	p, err := h.admin.UpdateProduct(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteProduct removes a product.
//
// @Summary      Delete product
// @Tags         admin
// @Param        id  path  int  true  "Product id"
// @Success      204
// @Router       /v1/admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteProduct(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImages uploads product images sent as multipart field "images".
//
// @Summary      Upload product images
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        images  formData  file  true  "Image files"
// @Success      200     {object}  imagesResponse
// @Router       /v1/admin/products/images [post]
func (h *AdminHandler) UploadImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return domain.NewValidationError("expected multipart form")
	}
	var files []ports.UploadFile
	for _, fh := range form.File["images"] {
		name, content, err := readFormFile(fh)
		if err != nil {
			return err
		}
		files = append(files, ports.UploadFile{Name: name, Content: content})
	}
	urls, err := h.admin.UploadImages(c.Request().Context(), files)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, imagesResponse{Images: urls})
}

// --- Orders ---

// Orders lists orders, optionally filtered by status.
//
// @Summary      Admin orders
// @Tags         admin
// @Produce      json
// @Param        status  query     string  false  "Order status"
// @Success      200     {object}  ordersResponse
// @Router       /v1/admin/orders [get]
func (h *AdminHandler) Orders(c echo.Context) error {
	orders, err := h.admin.ListOrders(c.Request().Context(), domain.OrderStatus(c.QueryParam("status")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}

// UpdateOrderStatus moves an order to another status.
//
// @Summary      Update order status
// @Tags         admin
// @Accept       json
// @Param        id    path  int                 true  "Order id"
// @Param        body  body  orderStatusRequest  true  "New status"
// @Success      204
// @Failure      400  {object}  ErrorBody
// @Router       /v1/admin/orders/{id}/status [patch]
func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := h.admin.UpdateOrderStatus(c.Request().Context(), id, req.OrderStatus); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Users & stats ---

// Users lists registered users.
//
// @Summary      Admin users
// @Tags         admin
// @Produce      json
// @Success      200  {object}  usersResponse
// @Router       /v1/admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	users, err := h.admin.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users})
}

// Stats returns the dashboard figures.
//
// @Summary      Admin stats
// @Tags         admin
// @Produce      json
// @Success      200  {object}  domain.Stats
// @Router       /v1/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// --- Offers ---

// Offers lists offers.
//
// @Summary      Offers
// @Tags         admin
// @Produce      json
// @Success      200  {object}  offersResponse
// @Router       /v1/admin/offers [get]
func (h *AdminHandler) Offers(c echo.Context) error {
	offers, err := h.admin.ListOffers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, offersResponse{Offers: offers})
}

// CreateOffer creates an offer.
//
// @Summary      Create offer
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      domain.OfferInput  true  "Offer"
// @Success      201   {object}  domain.Offer
// @Failure      400   {object}  ErrorBody
// @Router       /v1/admin/offers [post]
func (h *AdminHandler) CreateOffer(c echo.Context) error {
	var in domain.OfferInput
	if err := c.Bind(&in); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	offer, err := h.admin.CreateOffer(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, offer)
}

// ApplyOffer applies an offer to a category, or to everything for "All Products".
//
// @Summary      Apply offer
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      applyOfferRequest  true  "Offer and category"
// @Success      200   {object}  message
// @Failure      400   {object}  ErrorBody
// @Router       /v1/admin/offers/apply [post]
func (h *AdminHandler) ApplyOffer(c echo.Context) error {
	var req applyOfferRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := h.admin.ApplyOffer(c.Request().Context(), req.OfferID, req.Category); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, message{Message: "Offer applied"})
}

// --- Designs ---

// Designs lists every submitted design.
//
// @Summary      Custom designs
// @Tags         admin
// @Produce      json
// @Success      200  {object}  designsResponse
// @Router       /v1/admin/designs [get]
func (h *AdminHandler) Designs(c echo.Context) error {
	designs, err := h.admin.ListDesigns(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, designsResponse{Designs: designs})
}

// UpdateDesignStatus reviews a design.
//
// @Summary      Update design status
// @Tags         admin
// @Accept       json
// @Param        id    path  int                  true  "Design id"
// @Param        body  body  designStatusRequest  true  "Status and note"
// @Success      204
// @Failure      400  {object}  ErrorBody
// @Router       /v1/admin/designs/{id}/status [patch]
func (h *AdminHandler) UpdateDesignStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req designStatusRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	if err := h.admin.UpdateDesignStatus(c.Request().Context(), id, req.Status, req.AdminNote); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DesignDraft converts a design into a product draft; create=true also
// submits it as a new product.
//
// @Summary      Design to product draft
// @Tags         admin
// @Produce      json
// @Param        id      path      int   true   "Design id"
// @Param        create  query     bool  false  "Create the product"
// @Success      200     {object}  draftResponse
// @Failure      404     {object}  ErrorBody
// @Router       /v1/admin/designs/{id}/draft [post]
func (h *AdminHandler) DesignDraft(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	designs, err := h.admin.ListDesigns(ctx)
	if err != nil {
		return err
	}
	var design *domain.CustomDesign
	for i := range designs {
		if designs[i].ID == id {
			design = &designs[i]
			break
		}
	}
	if design == nil {
		return echo.NewHTTPError(http.StatusNotFound, "design not found")
	}

	draft, err := h.admin.DesignToProductDraft(*design)
	if err != nil {
		return err
	}
	resp := draftResponse{Draft: draft}
	if c.QueryParam("create") == "true" {
		p, err := h.admin.AddProduct(ctx, draft)
		if err != nil {
			return err
		}
		resp.Product = p
	}
	return c.JSON(http.StatusOK, resp)
}
