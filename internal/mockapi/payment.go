package mockapi

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// Currency is the only currency intents are issued in.
const Currency = "INR"

type createOrderRequest struct {
	Items   []domain.OrderItem `json:"items"`
	Address string             `json:"address"`
}

type paymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type createOrderResponse struct {
	Order       paymentOrder    `json:"order"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type verifyRequest struct {
	OrderID     string             `json:"razorpay_order_id"`
	PaymentID   string             `json:"razorpay_payment_id"`
	Signature   string             `json:"razorpay_signature"`
	Items       []domain.OrderItem `json:"items"`
	Address     string             `json:"address"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
}

type verifyResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

// SignPayment is the gateway signature of a payment: hex HMAC-SHA256 of
// "orderID|paymentID" keyed with the payment secret.
func SignPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign signs a payment with the server's payment secret, as the hosted widget would.
func (s *Server) Sign(orderID, paymentID string) string {
	return SignPayment(s.cfg.PaymentSecret, orderID, paymentID)
}

// createOrder prices the items at current effective prices and issues an
// intent for the total in paise.
func (s *Server) createOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if len(req.Items) == 0 {
		return fail(http.StatusBadRequest, "No items to order")
	}
	if strings.TrimSpace(req.Address) == "" {
		return fail(http.StatusBadRequest, "Address is required")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	total, err := s.store.price(req.Items)
	if err != nil {
		return err
	}
	id := "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
	s.store.intents[id] = &intent{
		userID:  userID(c),
		items:   append([]domain.OrderItem(nil), req.Items...),
		address: req.Address,
		total:   total,
	}
	s.log.Info().Str("order_id", id).Str("total", total.String()).Msg("payment order created")
	return c.JSON(http.StatusOK, createOrderResponse{
		Order: paymentOrder{
			ID:       id,
			Amount:   total.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
			Currency: Currency,
		},
		TotalAmount: total,
	})
}

// verifyPayment checks the signature, then places a Paid order, takes the
// stock and clears the cart. A rejected verification changes nothing.
func (s *Server) verifyPayment(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	uid := userID(c)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	in, ok := s.store.intents[req.OrderID]
	if !ok || in.userID != uid {
		return fail(http.StatusBadRequest, "Unknown payment order")
	}
	if in.paid {
		return fail(http.StatusBadRequest, "Payment already verified")
	}
	want := SignPayment(s.cfg.PaymentSecret, req.OrderID, req.PaymentID)
	if req.PaymentID == "" || !hmac.Equal([]byte(want), []byte(req.Signature)) {
		s.log.Warn().Str("order_id", req.OrderID).Msg("payment signature mismatch")
		return fail(http.StatusBadRequest, "Payment verification failed")
	}
	if !req.TotalAmount.Equal(in.total) {
		return fail(http.StatusBadRequest, "Amount mismatch")
	}
	if _, err := s.store.price(in.items); err != nil {
		return err
	}

	order := domain.Order{
		ID:          s.store.id(),
		UserID:      uid,
		TotalAmount: in.total,
		Address:     in.address,
		OrderStatus: domain.OrderPaid,
		PaymentID:   req.PaymentID,
		CreatedAt:   s.store.now(),
	}
	for _, it := range in.items {
		p := *s.store.products[it.ProductID]
		order.Items = append(order.Items, domain.OrderLine{
			ID:       s.store.id(),
			Product:  &p,
			Size:     it.Size,
			Quantity: it.Quantity,
			Price:    p.EffectiveUnitPrice(),
		})
	}
	s.store.takeStock(in.items)
	s.store.orders = append(s.store.orders, order)
	delete(s.store.carts, uid)
	in.paid = true

	s.log.Info().Int64("order", order.ID).Str("payment_id", req.PaymentID).Msg("payment verified")
	return c.JSON(http.StatusOK, verifyResponse{Message: "Payment verified successfully", Order: &order})
}
