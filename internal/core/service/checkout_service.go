package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/metrics"
)

// WidgetEvent is a callback from the hosted payment widget.
type WidgetEvent interface {
	widgetEvent()
}

// WidgetSucceeded reports a captured payment awaiting verification.
type WidgetSucceeded struct {
	PaymentID string
	OrderID   string
	Signature string
}

// WidgetFailed reports that the widget could not capture the payment.
type WidgetFailed struct {
	Reason string
}

// WidgetDismissed reports that the shopper closed the widget.
type WidgetDismissed struct{}

func (WidgetSucceeded) widgetEvent() {}
func (WidgetFailed) widgetEvent()    {}
func (WidgetDismissed) widgetEvent() {}

// CartSource is what checkout needs from the cart orchestrator.
type CartSource interface {
	Snapshot() domain.CartSummary
	Refresh(ctx context.Context)
}

// widgetCloser is implemented by widgets that hold per-attempt state.
type widgetCloser interface {
	Close(attemptID string)
}

// CheckoutService drives the intent → widget → verify handshake.
type CheckoutService struct {
	payments ports.PaymentAPI
	cart     CartSource
	session  SessionSource
	widget   ports.PaymentWidget
	guard    ports.VerificationGuard
	journal  ports.AttemptJournal
	nav      ports.Navigator
	notifier ports.Notifier
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	attempts map[string]*domain.CheckoutAttempt
	current  string
}

// CheckoutDeps groups the collaborators of CheckoutService. Guard and Journal
// are optional.
type CheckoutDeps struct {
	Payments ports.PaymentAPI
	Cart     CartSource
	Session  SessionSource
	Widget   ports.PaymentWidget
	Guard    ports.VerificationGuard
	Journal  ports.AttemptJournal
	Nav      ports.Navigator
	Notifier ports.Notifier
}

func NewCheckoutService(deps CheckoutDeps, log zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		payments: deps.Payments,
		cart:     deps.Cart,
		session:  deps.Session,
		widget:   deps.Widget,
		guard:    deps.Guard,
		journal:  deps.Journal,
		nav:      deps.Nav,
		notifier: deps.Notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		attempts: make(map[string]*domain.CheckoutAttempt),
	}
}

// Begin starts a checkout attempt for the current cart. The returned attempt
// is a copy; on success it is in WidgetOpen.
func (s *CheckoutService) Begin(ctx context.Context, address string) (*domain.CheckoutAttempt, error) {
	sess := s.session.Current()
	if !sess.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.NewValidationError("Please enter a delivery address")
	}
	summary := s.cart.Snapshot()
	if len(summary.Items) == 0 {
		return nil, domain.NewValidationError("Your cart is empty")
	}
	items := (&domain.Cart{Items: summary.Items}).OrderItems()

	s.mu.Lock()
	if cur, ok := s.attempts[s.current]; ok && cur.State.InFlight() && cur.UserID == sess.User.ID {
		s.mu.Unlock()
		return nil, domain.ErrCheckoutInProgress
	}
	now := s.now()
	attempt := &domain.CheckoutAttempt{
		ID:        uuid.NewString(),
		UserID:    sess.User.ID,
		Items:     items,
		Address:   address,
		State:     domain.CheckoutIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_ = s.transition(attempt, domain.CheckoutIntentRequested, "")
	s.attempts[attempt.ID] = attempt
	s.current = attempt.ID
	s.mu.Unlock()

	log := s.log.With().Str("attempt_id", attempt.ID).Logger()
	log.Info().Int("lines", len(items)).Msg("checkout started")

	intent, err := s.payments.CreateIntent(ctx, items, address)
	if err != nil {
		snap := s.finish(ctx, attempt.ID, domain.CheckoutIntentFailed, err.Error())
		s.notify(ports.LevelError, domain.UserMessage(err, "Could not initiate payment"))
		return snap, fmt.Errorf("create payment intent: %w", err)
	}

	s.mu.Lock()
	if attempt.State != domain.CheckoutIntentRequested {
		snap := cloneAttempt(attempt)
		s.mu.Unlock()
		log.Info().Str("state", string(snap.State)).Msg("intent arrived after the session ended")
		return snap, domain.ErrSessionEnded
	}
	attempt.Intent = intent
	_ = s.transition(attempt, domain.CheckoutWidgetOpen, "")
	s.mu.Unlock()

	req := ports.WidgetRequest{
		AttemptID:   attempt.ID,
		Intent:      *intent,
		PrefillName: sess.User.Name,
		PrefillMail: sess.User.Email,
	}
	if err := s.widget.Open(ctx, req); err != nil {
		snap := s.finish(ctx, attempt.ID, domain.CheckoutPaymentFailed, err.Error())
		s.notify(ports.LevelError, "Payment failed. Please try again.")
		return snap, fmt.Errorf("open payment widget: %w", err)
	}

	log.Info().Str("intent_id", intent.ID).Int64("amount", intent.Amount).Str("currency", intent.Currency).Msg("payment widget opened")
	return s.Attempt(attempt.ID)
}

// Deliver feeds a widget callback to the attempt. Callbacks are accepted only
// while the widget is open; anything else is ErrInvalidTransition. An attempt
// that belongs to another user is reported as not found.
func (s *CheckoutService) Deliver(ctx context.Context, attemptID string, ev WidgetEvent) (*domain.CheckoutAttempt, error) {
	sess := s.session.Current()
	if !sess.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	s.mu.Lock()
	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.UserID != sess.User.ID {
		s.mu.Unlock()
		return nil, domain.ErrAttemptNotFound
	}
	if attempt.State != domain.CheckoutWidgetOpen {
		state := attempt.State
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s does not accept widget events", domain.ErrInvalidTransition, state)
	}

	switch e := ev.(type) {
	case WidgetDismissed:
		s.mu.Unlock()
		snap := s.finish(ctx, attemptID, domain.CheckoutCancelled, "dismissed")
		s.notify(ports.LevelError, "Payment cancelled")
		return snap, nil

	case WidgetFailed:
		s.mu.Unlock()
		snap := s.finish(ctx, attemptID, domain.CheckoutPaymentFailed, e.Reason)
		s.notify(ports.LevelError, "Payment failed. Please try again.")
		return snap, nil

	case WidgetSucceeded:
		_ = s.transition(attempt, domain.CheckoutVerifying, "")
		in := domain.VerifyPaymentInput{
			Confirmation: domain.PaymentConfirmation{PaymentID: e.PaymentID, OrderID: e.OrderID, Signature: e.Signature},
			Items:        append([]domain.OrderItem(nil), attempt.Items...),
			Address:      attempt.Address,
			TotalAmount:  attempt.Intent.TotalAmount,
		}
		intentID := attempt.Intent.ID
		s.mu.Unlock()
		return s.verify(ctx, attemptID, sess.User.ID, intentID, in)

	default:
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: unknown widget event %T", domain.ErrInvalidTransition, ev)
	}
}

func (s *CheckoutService) verify(ctx context.Context, attemptID string, userID int64, intentID string, in domain.VerifyPaymentInput) (*domain.CheckoutAttempt, error) {
	log := s.log.With().Str("attempt_id", attemptID).Str("intent_id", intentID).Logger()

	if s.guard != nil {
		claimed, err := s.guard.Claim(ctx, intentID)
		switch {
		case err != nil:
			metrics.VerificationGuardTotal.WithLabelValues("error").Inc()
			log.Warn().Err(err).Msg("verification guard unavailable, verifying anyway")
		case !claimed:
			metrics.VerificationGuardTotal.WithLabelValues("duplicate").Inc()
			snap := s.finish(ctx, attemptID, domain.CheckoutVerificationFailed, domain.ErrAlreadyVerified.Error())
			s.notify(ports.LevelError, "Payment verification failed. Contact support.")
			return snap, fmt.Errorf("%w: %w", domain.ErrVerificationFailed, domain.ErrAlreadyVerified)
		default:
			metrics.VerificationGuardTotal.WithLabelValues("claimed").Inc()
		}
	}

	if err := s.payments.VerifyPayment(ctx, in); err != nil {
		log.Warn().Err(err).Msg("payment verification rejected")
		snap := s.finish(ctx, attemptID, domain.CheckoutVerificationFailed, err.Error())
		s.notify(ports.LevelError, "Payment verification failed. Contact support.")
		return snap, fmt.Errorf("%w: %w", domain.ErrVerificationFailed, err)
	}

	snap := s.finish(ctx, attemptID, domain.CheckoutCompleted, "")
	log.Info().Str("payment_id", in.Confirmation.PaymentID).Msg("order placed")
	// the order stands even if the shopper logged out while it was verified
	if cur := s.session.Current(); !cur.IsAuthenticated() || cur.User.ID != userID {
		return snap, nil
	}
	s.cart.Refresh(ctx)
	if s.nav != nil {
		s.nav.Navigate(ports.ViewOrderSuccess)
	}
	s.notify(ports.LevelSuccess, "Payment successful! Order placed.")
	return snap, nil
}

// OnSessionChange cancels attempts still waiting on the intent or the widget
// once they no longer belong to the current user. Attempts already verifying
// are left to finish.
func (s *CheckoutService) OnSessionChange(sess domain.Session) {
	var ended []*domain.CheckoutAttempt
	s.mu.Lock()
	for id, a := range s.attempts {
		if a.State != domain.CheckoutIntentRequested && a.State != domain.CheckoutWidgetOpen {
			continue
		}
		if sess.IsAuthenticated() && sess.User.ID == a.UserID {
			continue
		}
		if snap, ok := s.endLocked(id, domain.CheckoutCancelled, "session ended"); ok {
			ended = append(ended, snap)
		}
	}
	s.mu.Unlock()

	for _, snap := range ended {
		if c, ok := s.widget.(widgetCloser); ok {
			c.Close(snap.ID)
		}
		s.record(context.Background(), snap)
	}
}

// Attempt returns a copy of the attempt with the given id.
func (s *CheckoutService) Attempt(id string) (*domain.CheckoutAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	return cloneAttempt(a), nil
}

// Current returns a copy of the most recent attempt, if any.
func (s *CheckoutService) Current() (*domain.CheckoutAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[s.current]
	if !ok {
		return nil, false
	}
	return cloneAttempt(a), true
}

// State is the orchestrator state: the in-flight attempt's state, otherwise
// idle.
func (s *CheckoutService) State() domain.CheckoutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attempts[s.current]; ok && a.State.InFlight() {
		return a.State
	}
	return domain.CheckoutIdle
}

// transition must be called with s.mu held.
func (s *CheckoutService) transition(a *domain.CheckoutAttempt, next domain.CheckoutState, reason string) error {
	if !a.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, a.State, next)
	}
	a.State = next
	a.UpdatedAt = s.now()
	if next.IsTerminal() {
		a.Outcome = next.Outcome()
		a.Reason = reason
	}
	return nil
}

// finish moves the attempt to a terminal state, records it and returns a copy.
// An attempt that already ended is returned as is and not recorded again.
func (s *CheckoutService) finish(ctx context.Context, id string, state domain.CheckoutState, reason string) *domain.CheckoutAttempt {
	s.mu.Lock()
	snap, ended := s.endLocked(id, state, reason)
	s.mu.Unlock()
	if ended {
		s.record(ctx, snap)
	}
	return snap
}

// endLocked must be called with s.mu held.
func (s *CheckoutService) endLocked(id string, state domain.CheckoutState, reason string) (*domain.CheckoutAttempt, bool) {
	a := s.attempts[id]
	if a.State.IsTerminal() {
		return cloneAttempt(a), false
	}
	if err := s.transition(a, state, reason); err != nil {
		s.log.Error().Err(err).Str("attempt_id", id).Msg("checkout transition rejected")
		return cloneAttempt(a), false
	}
	return cloneAttempt(a), true
}

func (s *CheckoutService) record(ctx context.Context, snap *domain.CheckoutAttempt) {
	metrics.CheckoutAttemptsTotal.WithLabelValues(string(snap.Outcome)).Inc()
	s.log.Info().Str("attempt_id", snap.ID).Str("outcome", string(snap.Outcome)).Str("reason", snap.Reason).Msg("checkout finished")
	if s.journal != nil {
		if err := s.journal.Record(ctx, snap); err != nil {
			s.log.Warn().Err(err).Str("attempt_id", snap.ID).Msg("failed to journal checkout attempt")
		}
	}
}

func (s *CheckoutService) notify(level ports.Level, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(level, msg)
	}
}

func cloneAttempt(a *domain.CheckoutAttempt) *domain.CheckoutAttempt {
	c := *a
	c.Items = append([]domain.OrderItem(nil), a.Items...)
	if a.Intent != nil {
		intent := *a.Intent
		c.Intent = &intent
	}
	return &c
}
