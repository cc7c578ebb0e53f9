package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/service"
	"github.com/pulsepr/storefront/internal/infrastructure/widget"
)

// CheckoutRunner is the checkout surface the console drives.
type CheckoutRunner interface {
	Begin(ctx context.Context, address string) (*domain.CheckoutAttempt, error)
	Deliver(ctx context.Context, attemptID string, ev service.WidgetEvent) (*domain.CheckoutAttempt, error)
	Attempt(id string) (*domain.CheckoutAttempt, error)
	Current() (*domain.CheckoutAttempt, bool)
}

// WidgetOptionsSource hands out the hosted widget options of open attempts.
type WidgetOptionsSource interface {
	Options(attemptID string) (widget.Options, bool)
	Close(attemptID string)
}

// AttemptHistory lists journaled attempts.
type AttemptHistory interface {
	ListByUser(ctx context.Context, userID int64, limit int64) ([]domain.CheckoutAttempt, error)
}

type CheckoutHandler struct {
	checkout CheckoutRunner
	widgets  WidgetOptionsSource
	history  AttemptHistory
	sessions SessionReader
}

func NewCheckoutHandler(checkout CheckoutRunner, widgets WidgetOptionsSource, history AttemptHistory, sessions SessionReader) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, widgets: widgets, history: history, sessions: sessions}
}

type beginRequest struct {
	Address string `json:"address"`
}

// Event types a browser relays from the hosted widget.
const (
	eventSucceeded = "succeeded"
	eventFailed    = "failed"
	eventDismissed = "dismissed"
)

// widgetEventRequest carries the widget callback. Success fields keep the
// gateway's names so the page can forward the handler response unchanged.
type widgetEventRequest struct {
	Type      string `json:"type"                validate:"required,oneof=succeeded failed dismissed"`
	PaymentID string `json:"razorpay_payment_id" validate:"required_if=Type succeeded"`
	OrderID   string `json:"razorpay_order_id"   validate:"required_if=Type succeeded"`
	Signature string `json:"razorpay_signature"  validate:"required_if=Type succeeded"`
	Reason    string `json:"reason"`
}

func (r widgetEventRequest) event() service.WidgetEvent {
	switch r.Type {
	case eventSucceeded:
		return service.WidgetSucceeded{PaymentID: r.PaymentID, OrderID: r.OrderID, Signature: r.Signature}
	case eventFailed:
		return service.WidgetFailed{Reason: r.Reason}
	default:
		return service.WidgetDismissed{}
	}
}

type attemptResponse struct {
	Attempt *domain.CheckoutAttempt `json:"attempt"`
	Widget  *widget.Options         `json:"widget,omitempty"`
}

type historyResponse struct {
	Attempts []domain.CheckoutAttempt `json:"attempts"`
}

func (h *CheckoutHandler) respond(c echo.Context, status int, a *domain.CheckoutAttempt) error {
	resp := attemptResponse{Attempt: a}
	if a != nil && a.State == domain.CheckoutWidgetOpen {
		if opts, ok := h.widgets.Options(a.ID); ok {
			resp.Widget = &opts
		}
	}
	return c.JSON(status, resp)
}

// Begin requests a payment intent for the cart and opens the widget.
//
// @Summary      Start checkout
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        body  body      beginRequest  true  "Delivery address"
// @Success      201   {object}  attemptResponse
// @Failure      400   {object}  ErrorBody
// @Failure      409   {object}  ErrorBody
// @Router       /v1/checkout [post]
func (h *CheckoutHandler) Begin(c echo.Context) error {
	var req beginRequest
	if err := c.Bind(&req); err != nil {
		return domain.NewValidationError("invalid payload")
	}
	attempt, err := h.checkout.Begin(c.Request().Context(), req.Address)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusCreated, attempt)
}

// Current returns the latest attempt, if any.
//
// @Summary      Current checkout attempt
// @Tags         checkout
// @Produce      json
// @Success      200  {object}  attemptResponse
// @Failure      404  {object}  ErrorBody
// @Router       /v1/checkout/current [get]
func (h *CheckoutHandler) Current(c echo.Context) error {
	attempt, ok := h.checkout.Current()
	if !ok {
		return domain.ErrAttemptNotFound
	}
	return h.respond(c, http.StatusOK, attempt)
}

// Get returns one attempt.
//
// @Summary      Checkout attempt
// @Tags         checkout
// @Produce      json
// @Param        id   path      string  true  "Attempt id"
// @Success      200  {object}  attemptResponse
// @Failure      404  {object}  ErrorBody
// @Router       /v1/checkout/{id} [get]
func (h *CheckoutHandler) Get(c echo.Context) error {
	attempt, err := h.checkout.Attempt(c.Param("id"))
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, attempt)
}

// Event delivers a widget callback to the attempt.
//
// @Summary      Widget callback
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Attempt id"
// @Param        body  body      widgetEventRequest  true  "Widget result"
// @Success      200   {object}  attemptResponse
// @Failure      402   {object}  ErrorBody
// @Failure      404   {object}  ErrorBody
// @Failure      422   {object}  ErrorBody
// @Router       /v1/checkout/{id}/events [post]
func (h *CheckoutHandler) Event(c echo.Context) error {
	var req widgetEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	id := c.Param("id")
	attempt, err := h.checkout.Deliver(c.Request().Context(), id, req.event())
	if errors.Is(err, domain.ErrAttemptNotFound) || errors.Is(err, domain.ErrInvalidTransition) {
		return err
	}
	h.widgets.Close(id)
	if err != nil {
		return err
	}
	return h.respond(c, http.StatusOK, attempt)
}

// History lists the signed-in user's settled attempts, newest first.
//
// @Summary      Checkout history
// @Tags         checkout
// @Produce      json
// @Param        limit  query     int  false  "Maximum attempts"
// @Success      200    {object}  historyResponse
// @Failure      401    {object}  ErrorBody
// @Router       /v1/checkout/history [get]
func (h *CheckoutHandler) History(c echo.Context) error {
	sess := h.sessions.Current()
	if !sess.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	attempts, err := h.history.ListByUser(c.Request().Context(), sess.User.ID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, historyResponse{Attempts: attempts})
}
