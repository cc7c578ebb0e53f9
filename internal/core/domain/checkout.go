package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutState is the lifecycle state of a checkout attempt.
type CheckoutState string

const (
	CheckoutIdle               CheckoutState = "idle"
	CheckoutIntentRequested    CheckoutState = "intent_requested"
	CheckoutWidgetOpen         CheckoutState = "widget_open"
	CheckoutVerifying          CheckoutState = "verifying"
	CheckoutCompleted          CheckoutState = "completed"
	CheckoutVerificationFailed CheckoutState = "verification_failed"
	CheckoutCancelled          CheckoutState = "cancelled"
	CheckoutPaymentFailed      CheckoutState = "payment_failed"
	CheckoutIntentFailed       CheckoutState = "intent_failed"
)

// checkoutTransitions defines the allowed state machine transitions.
var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutIdle:            {CheckoutIntentRequested},
	CheckoutIntentRequested: {CheckoutWidgetOpen, CheckoutIntentFailed, CheckoutCancelled},
	CheckoutWidgetOpen:      {CheckoutVerifying, CheckoutCancelled, CheckoutPaymentFailed},
	CheckoutVerifying:       {CheckoutCompleted, CheckoutVerificationFailed},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s CheckoutState) IsTerminal() bool {
	return s != CheckoutIdle && len(checkoutTransitions[s]) == 0
}

// InFlight reports whether the attempt still waits on the backend or widget.
func (s CheckoutState) InFlight() bool {
	return s == CheckoutIntentRequested || s == CheckoutWidgetOpen || s == CheckoutVerifying
}

func (s CheckoutState) String() string { return string(s) }

// CheckoutOutcome is the terminal result of an attempt.
type CheckoutOutcome string

const (
	OutcomeNone               CheckoutOutcome = ""
	OutcomeSucceeded          CheckoutOutcome = "succeeded"
	OutcomeVerificationFailed CheckoutOutcome = "verification_failed"
	OutcomeCancelledByUser    CheckoutOutcome = "cancelled_by_user"
	OutcomePaymentFailed      CheckoutOutcome = "payment_failed"
	OutcomeInitiationFailed   CheckoutOutcome = "initiation_failed"
)

// Outcome maps a terminal state to its outcome.
func (s CheckoutState) Outcome() CheckoutOutcome {
	switch s {
	case CheckoutCompleted:
		return OutcomeSucceeded
	case CheckoutVerificationFailed:
		return OutcomeVerificationFailed
	case CheckoutCancelled:
		return OutcomeCancelledByUser
	case CheckoutPaymentFailed:
		return OutcomePaymentFailed
	case CheckoutIntentFailed:
		return OutcomeInitiationFailed
	default:
		return OutcomeNone
	}
}

// OrderItem is the (product, size, quantity) triple sent at checkout.
type OrderItem struct {
	ProductID int64 `json:"productId" bson:"product_id"`
	Size      Size  `json:"size"      bson:"size"`
	Quantity  int   `json:"quantity"  bson:"quantity"`
}

// PaymentIntent is the backend-issued handle for a pending payment. Amount is
// in the currency's minor unit, as the hosted widget expects it.
type PaymentIntent struct {
	ID          string          `json:"id"`
	Amount      int64           `json:"amount"`
	Currency    string          `json:"currency"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// PaymentConfirmation carries the identifiers the widget reports on success.
type PaymentConfirmation struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature"`
}

// VerifyPaymentInput is what the backend needs to confirm a captured payment.
type VerifyPaymentInput struct {
	Confirmation PaymentConfirmation
	Items        []OrderItem
	Address      string
	TotalAmount  decimal.Decimal
}

// CheckoutAttempt is a single pass through the payment handshake.
type CheckoutAttempt struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"userId"`
	Items     []OrderItem     `json:"items"`
	Address   string          `json:"address"`
	Intent    *PaymentIntent  `json:"intent"`
	State     CheckoutState   `json:"state"`
	Outcome   CheckoutOutcome `json:"outcome"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
