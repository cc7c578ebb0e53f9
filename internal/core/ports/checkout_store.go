package ports

import (
	"context"

	"github.com/pulsepr/storefront/internal/core/domain"
)

// VerificationGuard ensures a payment intent is submitted for verification at
// most once.
type VerificationGuard interface {
	// Claim returns true the first time it sees intentID and false after.
	Claim(ctx context.Context, intentID string) (bool, error)
}

// AttemptJournal records checkout attempts once they reach a terminal state.
type AttemptJournal interface {
	Record(ctx context.Context, attempt *domain.CheckoutAttempt) error
}
