package ports

import (
	"context"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// View names the screens the orchestrators navigate to.
const (
	ViewLogin        = "/login"
	ViewCart         = "/cart"
	ViewCheckout     = "/checkout"
	ViewOrderSuccess = "/order-success"
	ViewHome         = "/"
)

// Navigator tracks and changes the active view.
type Navigator interface {
	Current() string
	Navigate(view string)
}

// Level is the severity of a transient notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(level Level, message string)
}

// WidgetRequest configures the hosted payment widget for one intent.
type WidgetRequest struct {
	AttemptID   string
	Intent      domain.PaymentIntent
	PrefillName string
	PrefillMail string
}

// PaymentWidget opens the hosted checkout widget. Open returns once the widget
// has been handed its options; results come back later as widget events.
type PaymentWidget interface {
	Open(ctx context.Context, req WidgetRequest) error
}
