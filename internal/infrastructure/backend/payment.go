package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/infrastructure/gateway"
)

type PaymentClient struct {
	c Doer
}

func NewPaymentClient(c Doer) *PaymentClient { return &PaymentClient{c: c} }

var _ ports.PaymentAPI = (*PaymentClient)(nil)

type createOrderRequest struct {
	Items   []domain.OrderItem `json:"items"`
	Address string             `json:"address"`
}

type createOrderResponse struct {
	Order struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"order"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// verifyRequest uses the payment gateway's field names.
type verifyRequest struct {
	OrderID     string             `json:"razorpay_order_id"`
	PaymentID   string             `json:"razorpay_payment_id"`
	Signature   string             `json:"razorpay_signature"`
	Items       []domain.OrderItem `json:"items"`
	Address     string             `json:"address"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
}

func (p *PaymentClient) CreateIntent(ctx context.Context, items []domain.OrderItem, address string) (*domain.PaymentIntent, error) {
	var out createOrderResponse
	err := p.c.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/api/payment/create-order",
		Body:   createOrderRequest{Items: items, Address: address},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Order.ID == "" {
		return nil, fmt.Errorf("create order: response carries no order id")
	}
	currency := out.Order.Currency
	if currency == "" {
		currency = "INR"
	}
	return &domain.PaymentIntent{
		ID:          out.Order.ID,
		Amount:      out.Order.Amount,
		Currency:    currency,
		TotalAmount: out.TotalAmount,
	}, nil
}

func (p *PaymentClient) VerifyPayment(ctx context.Context, in domain.VerifyPaymentInput) error {
	return p.c.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/api/payment/verify",
		Body: verifyRequest{
			OrderID:     in.Confirmation.OrderID,
			PaymentID:   in.Confirmation.PaymentID,
			Signature:   in.Confirmation.Signature,
			Items:       in.Items,
			Address:     in.Address,
			TotalAmount: in.TotalAmount,
		},
	}, nil)
}
