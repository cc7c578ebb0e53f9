package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/infrastructure/gateway"
)

type AdminClient struct {
	c Doer
}

func NewAdminClient(c Doer) *AdminClient { return &AdminClient{c: c} }

var _ ports.AdminAPI = (*AdminClient)(nil)

type usersResponse struct {
	Users []domain.UserRecord `json:"users"`
}

type statsResponse struct {
	Stats *domain.Stats `json:"stats"`
}

type offersResponse struct {
	Offers []domain.Offer `json:"offers"`
}

type offerResponse struct {
	Offer *domain.Offer `json:"offer"`
}

type imagesResponse struct {
	Images []string `json:"images"`
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

// ---- products ----

func (a *AdminClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out productsResponse
	if err := a.c.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/admin/products"}, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (a *AdminClient) AddProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	var out productResponse
	err := a.c.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/api/admin/product/add", Body: in}, &out)
	if err != nil {
		return nil, err
	}
	return out.Product, nil
}

func (a *AdminClient) UpdateProduct(ctx context.Context, productID int64, in domain.ProductInput) (*domain.Product, error) {
	var out productResponse
	err := a.c.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   "/api/admin/product/update/" + id(productID),
		Route:  "/api/admin/product/update/:id",
		Body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Product, nil
}

func (a *AdminClient) DeleteProduct(ctx context.Context, productID int64) error {
	return a.c.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   "/api/admin/product/delete/" + id(productID),
		Route:  "/api/admin/product/delete/:id",
	}, nil)
}

// UploadImages sends every file under the multipart field "images".
func (a *AdminClient) UploadImages(ctx context.Context, files []ports.UploadFile) ([]string, error) {
	parts := make([]gateway.File, 0, len(files))
	for _, f := range files {
		parts = append(parts, gateway.File{Field: "images", Name: f.Name, Content: f.Content})
	}
	var out imagesResponse
	err := a.c.Do(ctx, gateway.Request{
		Method:    http.MethodPost,
		Path:      "/api/admin/product/upload-image",
		Multipart: &gateway.Multipart{Files: parts},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Images, nil
}

// ---- orders ----

func (a *AdminClient) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var out ordersResponse
	if err := a.c.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/admin/orders"}, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (a *AdminClient) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) error {
	return a.c.Do(ctx, gateway.Request{
		Method: http.MethodPatch,
		Path:   "/api/admin/order/status/" + id(orderID),
		Route:  "/api/admin/order/status/:id",
		Body:   map[string]domain.OrderStatus{"orderStatus": status},
	}, nil)
}

// ---- users & stats ----

func (a *AdminClient) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	var out usersResponse
	if err := a.c.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/admin/users"}, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (a *AdminClient) Stats(ctx context.Context) (*domain.Stats, error) {
	var out statsResponse
	if err := a.c.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/admin/stats"}, &out); err != nil {
		return nil, err
	}
	if out.Stats == nil {
		return &domain.Stats{}, nil
	}
	return out.Stats, nil
}

// ---- offers ----

func (a *AdminClient) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	var out offersResponse
	if err := a.c.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/admin/offers"}, &out); err != nil {
		return nil, err
	}
	return out.Offers, nil
}

func (a *AdminClient) CreateOffer(ctx context.Context, in domain.OfferInput) (*domain.Offer, error) {
	var out offerResponse
	if err := a.c.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/api/admin/offers", Body: in}, &out); err != nil {
		return nil, err
	}
	return out.Offer, nil
}

func (a *AdminClient) ApplyOffer(ctx context.Context, in ports.ApplyOfferInput) error {
	return a.c.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/api/admin/offers/apply", Body: in}, nil)
}

// ---- designs ----

func (a *AdminClient) ListDesigns(ctx context.Context) ([]domain.CustomDesign, error) {
	var out designsResponse
	if err := a.c.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/admin/designs"}, &out); err != nil {
		return nil, err
	}
	return out.Designs, nil
}

func (a *AdminClient) UpdateDesignStatus(ctx context.Context, designID int64, status domain.DesignStatus, adminNote string) error {
	return a.c.Do(ctx, gateway.Request{
		Method: http.MethodPatch,
		Path:   "/api/admin/designs/" + id(designID) + "/status",
		Route:  "/api/admin/designs/:id/status",
		Body: struct {
			Status    domain.DesignStatus `json:"status"`
			AdminNote string              `json:"adminNote"`
		}{status, adminNote},
	}, nil)
}
