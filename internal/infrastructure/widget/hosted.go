// Package widget prepares options for the hosted payment widget. The widget
// itself runs in the shopper's browser; the console hands it these options and
// relays its callbacks back to the checkout orchestrator.
package widget

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/ports"
)

const (
	merchantName = "PULSEPR"
	description  = "Purchase from PULSEPR"
	themeColor   = "#d4ff00"
)

// ErrMissingKey is returned by Open when no publishable key is configured.
var ErrMissingKey = errors.New("payment key id is not configured")

type Prefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Theme struct {
	Color string `json:"color"`
}

// Options is the configuration object the hosted checkout script expects.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Hosted keeps the options of every open widget until its attempt settles.
type Hosted struct {
	keyID string
	log   zerolog.Logger

	mu   sync.RWMutex
	open map[string]Options
}

func NewHosted(keyID string, log zerolog.Logger) *Hosted {
	return &Hosted{keyID: keyID, log: log, open: make(map[string]Options)}
}

// Open implements ports.PaymentWidget.
func (h *Hosted) Open(_ context.Context, req ports.WidgetRequest) error {
	if h.keyID == "" {
		return ErrMissingKey
	}
	currency := req.Intent.Currency
	if currency == "" {
		currency = "INR"
	}
	opts := Options{
		Key:         h.keyID,
		Amount:      req.Intent.Amount,
		Currency:    currency,
		Name:        merchantName,
		Description: description,
		OrderID:     req.Intent.ID,
		Prefill:     Prefill{Name: req.PrefillName, Email: req.PrefillMail},
		Theme:       Theme{Color: themeColor},
	}

	h.mu.Lock()
	h.open[req.AttemptID] = opts
	h.mu.Unlock()

	h.log.Debug().Str("attempt_id", req.AttemptID).Str("order_id", opts.OrderID).Msg("widget options prepared")
	return nil
}

// Options returns the widget options for an attempt that is still open.
func (h *Hosted) Options(attemptID string) (Options, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	opts, ok := h.open[attemptID]
	return opts, ok
}

// Close forgets the attempt's options once a callback has been delivered.
func (h *Hosted) Close(attemptID string) {
	h.mu.Lock()
	delete(h.open, attemptID)
	h.mu.Unlock()
}
