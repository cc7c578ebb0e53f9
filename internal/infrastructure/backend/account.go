package backend

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/infrastructure/gateway"
)

type AccountClient struct {
	c Doer
}

func NewAccountClient(c Doer) *AccountClient { return &AccountClient{c: c} }

var _ ports.AccountAPI = (*AccountClient)(nil)

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type designsResponse struct {
	Designs []domain.CustomDesign `json:"designs"`
}

type designResponse struct {
	Design *domain.CustomDesign `json:"design"`
}

func (a *AccountClient) MyOrders(ctx context.Context) ([]domain.Order, error) {
	var out ordersResponse
	if err := a.c.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/auth/orders"}, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		return []domain.Order{}, nil
	}
	return out.Orders, nil
}

// UploadDesign posts the design as multipart: the image under "design" plus
// note, printSize and quantity fields.
func (a *AccountClient) UploadDesign(ctx context.Context, in domain.DesignUpload) (*domain.CustomDesign, error) {
	var out designResponse
	err := a.c.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/api/designs/upload",
		Multipart: &gateway.Multipart{
			Fields: map[string]string{
				"note":      in.Note,
				"printSize": in.PrintSize,
				"quantity":  strconv.Itoa(in.Quantity),
			},
			Files: []gateway.File{{Field: "design", Name: in.FileName, Content: in.Content}},
		},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Design, nil
}

func (a *AccountClient) MyDesigns(ctx context.Context) ([]domain.CustomDesign, error) {
	var out designsResponse
	if err := a.c.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/api/designs/my-designs"}, &out); err != nil {
		return nil, err
	}
	if out.Designs == nil {
		return []domain.CustomDesign{}, nil
	}
	return out.Designs, nil
}

func (a *AccountClient) GetDesign(ctx context.Context, id int64) (*domain.CustomDesign, error) {
	var out designResponse
	err := a.c.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/api/designs/" + strconv.FormatInt(id, 10),
		Route:  "/api/designs/:id",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Design, nil
}

func (a *AccountClient) DeleteDesign(ctx context.Context, id int64) error {
	return a.c.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   "/api/designs/" + strconv.FormatInt(id, 10),
		Route:  "/api/designs/:id",
	}, nil)
}
