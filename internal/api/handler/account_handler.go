package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// maxUpload caps a single uploaded file.
const maxUpload = 10 << 20

// AccountManager is the signed-in user's own orders and designs.
type AccountManager interface {
	MyOrders(ctx context.Context) ([]domain.Order, error)
	UploadDesign(ctx context.Context, in domain.DesignUpload) (*domain.CustomDesign, error)
	MyDesigns(ctx context.Context) ([]domain.CustomDesign, error)
	GetDesign(ctx context.Context, id int64) (*domain.CustomDesign, error)
	DeleteDesign(ctx context.Context, id int64) error
}

type AccountHandler struct {
	account AccountManager
}

func NewAccountHandler(account AccountManager) *AccountHandler {
	return &AccountHandler{account: account}
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type designsResponse struct {
	Designs []domain.CustomDesign `json:"designs"`
}

// Orders lists the user's orders.
//
// @Summary      My orders
// @Tags         account
// @Produce      json
// @Success      200  {object}  ordersResponse
// @Failure      401  {object}  ErrorBody
// @Router       /v1/account/orders [get]
func (h *AccountHandler) Orders(c echo.Context) error {
	orders, err := h.account.MyOrders(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ordersResponse{Orders: orders})
}

// UploadDesign submits a print design as multipart field "design".
//
// @Summary      Upload custom design
// @Tags         account
// @Accept       multipart/form-data
// @Produce      json
// @Param        design     formData  file    true   "Image file"
// @Param        note       formData  string  false  "Note for the print shop"
// @Param        printSize  formData  string  false  "Print size"
// @Param        quantity   formData  int     false  "Quantity"
// @Success      201        {object}  domain.CustomDesign
// @Failure      400        {object}  ErrorBody
// @Router       /v1/account/designs [post]
func (h *AccountHandler) UploadDesign(c echo.Context) error {
	in := domain.DesignUpload{
		Note:      c.FormValue("note"),
		PrintSize: c.FormValue("printSize"),
	}
	if q := c.FormValue("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return domain.NewValidationError("quantity must be a number")
		}
		in.Quantity = n
	}
	if fh, err := c.FormFile("design"); err == nil {
		name, content, err := readFormFile(fh)
		if err != nil {
			return err
		}
		in.FileName, in.Content = name, content
	}

	design, err := h.account.UploadDesign(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, design)
}

// Designs lists the user's designs.
//
// @Summary      My designs
// @Tags         account
// @Produce      json
// @Success      200  {object}  designsResponse
// @Router       /v1/account/designs [get]
func (h *AccountHandler) Designs(c echo.Context) error {
	designs, err := h.account.MyDesigns(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, designsResponse{Designs: designs})
}

// Design returns one of the user's designs.
//
// @Summary      Design detail
// @Tags         account
// @Produce      json
// @Param        id   path      int  true  "Design id"
// @Success      200  {object}  domain.CustomDesign
// @Router       /v1/account/designs/{id} [get]
func (h *AccountHandler) Design(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.account.GetDesign(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// DeleteDesign withdraws a design.
//
// @Summary      Delete design
// @Tags         account
// @Param        id  path  int  true  "Design id"
// @Success      204
// @Router       /v1/account/designs/{id} [delete]
func (h *AccountHandler) DeleteDesign(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.account.DeleteDesign(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// readFormFile reads one uploaded file, bounded by maxUpload.
func readFormFile(fh *multipart.FileHeader) (string, []byte, error) {
	name := fh.Filename
	f, err := fh.Open()
	if err != nil {
		return "", nil, domain.NewValidationError("could not read " + name)
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, maxUpload+1))
	if err != nil {
		return "", nil, domain.NewValidationError("could not read " + name)
	}
	if len(content) > maxUpload {
		return "", nil, domain.NewValidationError(name + " exceeds 10MB")
	}
	return name, content, nil
}
