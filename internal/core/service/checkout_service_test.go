package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/infrastructure/storage"
	"github.com/pulsepr/storefront/internal/metrics"
)

type stubPaymentAPI struct {
	createFn func(ctx context.Context, items []domain.OrderItem, address string) (*domain.PaymentIntent, error)
	verifyFn func(ctx context.Context, in domain.VerifyPaymentInput) error
	creates  int
	verifies []domain.VerifyPaymentInput
}

func (s *stubPaymentAPI) CreateIntent(ctx context.Context, items []domain.OrderItem, address string) (*domain.PaymentIntent, error) {
	s.creates++
	if s.createFn != nil {
		return s.createFn(ctx, items, address)
	}
	return &domain.PaymentIntent{ID: "order_1", Amount: 150000, Currency: "INR", TotalAmount: decimal.NewFromInt(1500)}, nil
}

func (s *stubPaymentAPI) VerifyPayment(ctx context.Context, in domain.VerifyPaymentInput) error {
	s.verifies = append(s.verifies, in)
	if s.verifyFn != nil {
		return s.verifyFn(ctx, in)
	}
	return nil
}

type stubCartSource struct {
	summary   domain.CartSummary
	refreshes int
}

func (c *stubCartSource) Snapshot() domain.CartSummary { return c.summary }
func (c *stubCartSource) Refresh(context.Context)      { c.refreshes++ }

type memGuard struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (g *memGuard) Claim(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[id] {
		return false, nil
	}
	g.seen[id] = true
	return true, nil
}

type memJournal struct {
	records []*domain.CheckoutAttempt
}

func (j *memJournal) Record(_ context.Context, a *domain.CheckoutAttempt) error {
	j.records = append(j.records, a)
	return nil
}

type checkoutFixture struct {
	svc      *CheckoutService
	payments *stubPaymentAPI
	cart     *stubCartSource
	widget   *stubWidget
	guard    *memGuard
	journal  *memJournal
	nav      *stubNavigator
	notes    *recordingNotifier
}

func newCheckoutFixture(sess SessionSource) *checkoutFixture {
	f := &checkoutFixture{
		payments: &stubPaymentAPI{},
		cart: &stubCartSource{summary: cartOf(
			domain.CartItem{ID: 1, Product: tee(1, 500, nil), Size: domain.SizeM, Quantity: 3},
		).Summary()},
		widget:  &stubWidget{},
		guard:   &memGuard{},
		journal: &memJournal{},
		nav:     &stubNavigator{current: ports.ViewCheckout},
		notes:   &recordingNotifier{},
	}
	f.svc = NewCheckoutService(CheckoutDeps{
		Payments: f.payments,
		Cart:     f.cart,
		Session:  sess,
		Widget:   f.widget,
		Guard:    f.guard,
		Journal:  f.journal,
		Nav:      f.nav,
		Notifier: f.notes,
	}, zerolog.Nop())
	return f
}

func success() WidgetSucceeded {
	return WidgetSucceeded{PaymentID: "pay_1", OrderID: "order_1", Signature: "sig"}
}

// ---- begin ----

func TestCheckoutService_BeginOpensWidget(t *testing.T) {
	f := newCheckoutFixture(userSession())

	attempt, err := f.svc.Begin(context.Background(), "  221B Baker Street  ")
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if attempt.State != domain.CheckoutWidgetOpen {
		t.Fatalf("expected widget_open, got %s", attempt.State)
	}
	if attempt.Address != "221B Baker Street" {
		t.Fatalf("expected trimmed address, got %q", attempt.Address)
	}
	if len(f.widget.opened) != 1 {
		t.Fatalf("expected widget opened once, got %d", len(f.widget.opened))
	}
	req := f.widget.opened[0]
	if req.Intent.ID != "order_1" || req.PrefillName != "Ana" || req.PrefillMail != "ana@example.com" {
		t.Fatalf("unexpected widget request %+v", req)
	}
	if f.svc.State() != domain.CheckoutWidgetOpen {
		t.Fatalf("expected orchestrator in widget_open, got %s", f.svc.State())
	}
}

func TestCheckoutService_BeginValidation(t *testing.T) {
	f := newCheckoutFixture(userSession())

	var ve *domain.ValidationError
	if _, err := f.svc.Begin(context.Background(), "   "); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for blank address, got %v", err)
	}

	f.cart.summary = (*domain.Cart)(nil).Summary()
	if _, err := f.svc.Begin(context.Background(), "Street 1"); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError for empty cart, got %v", err)
	}
	if f.payments.creates != 0 {
		t.Fatalf("expected no backend calls, got %d", f.payments.creates)
	}

	anon := newCheckoutFixture(anonymous())
	if _, err := anon.svc.Begin(context.Background(), "Street 1"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestCheckoutService_IntentFailure(t *testing.T) {
	f := newCheckoutFixture(userSession())
	f.payments.createFn = func(context.Context, []domain.OrderItem, string) (*domain.PaymentIntent, error) {
		return nil, errNetwork
	}

	attempt, err := f.svc.Begin(context.Background(), "Street 1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempt.State != domain.CheckoutIntentFailed || attempt.Outcome != domain.OutcomeInitiationFailed {
		t.Fatalf("unexpected attempt %+v", attempt)
	}
	if len(f.widget.opened) != 0 {
		t.Fatalf("widget must not open")
	}
	if got := f.notes.last(); got.message != "Could not initiate payment" {
		t.Fatalf("unexpected notification %+v", got)
	}
	if len(f.journal.records) != 1 {
		t.Fatalf("expected terminal attempt journaled")
	}
	if f.svc.State() != domain.CheckoutIdle {
		t.Fatalf("expected idle after failure, got %s", f.svc.State())
	}
}

func TestCheckoutService_BeginRejectedWhileInFlight(t *testing.T) {
	f := newCheckoutFixture(userSession())
	first, err := f.svc.Begin(context.Background(), "Street 1")
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}

	if _, err := f.svc.Begin(context.Background(), "Street 1"); !errors.Is(err, domain.ErrCheckoutInProgress) {
		t.Fatalf("expected ErrCheckoutInProgress, got %v", err)
	}

	if _, err := f.svc.Deliver(context.Background(), first.ID, WidgetDismissed{}); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}
	second, err := f.svc.Begin(context.Background(), "Street 1")
	if err != nil {
		t.Fatalf("retry Begin returned error: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("retry must create a new attempt")
	}
}

func TestCheckoutService_WidgetOpenFailure(t *testing.T) {
	f := newCheckoutFixture(userSession())
	f.widget.openFn = func(context.Context, ports.WidgetRequest) error { return errors.New("script blocked") }

	attempt, err := f.svc.Begin(context.Background(), "Street 1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if attempt.State != domain.CheckoutPaymentFailed {
		t.Fatalf("expected payment_failed, got %s", attempt.State)
	}
}

// ---- widget events ----

func TestCheckoutService_SuccessVerifiesOnceAndNavigates(t *testing.T) {
	f := newCheckoutFixture(userSession())
	attempt, err := f.svc.Begin(context.Background(), "Street 1")
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}

	done, err := f.svc.Deliver(context.Background(), attempt.ID, success())
	if err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}
	if done.State != domain.CheckoutCompleted || done.Outcome != domain.OutcomeSucceeded {
		t.Fatalf("unexpected attempt %+v", done)
	}
	if len(f.payments.verifies) != 1 {
		t.Fatalf("expected one verify call, got %d", len(f.payments.verifies))
	}
	in := f.payments.verifies[0]
	if in.Confirmation.OrderID != "order_1" || in.Address != "Street 1" || !in.TotalAmount.Equal(decimal.NewFromInt(1500)) || len(in.Items) != 1 {
		t.Fatalf("unexpected verify payload %+v", in)
	}
	if f.cart.refreshes != 1 {
		t.Fatalf("expected one cart refresh, got %d", f.cart.refreshes)
	}
	if f.nav.Current() != ports.ViewOrderSuccess {
		t.Fatalf("expected order-success view, got %q", f.nav.Current())
	}
	if got := f.notes.last(); got.message != "Payment successful! Order placed." {
		t.Fatalf("unexpected notification %+v", got)
	}

	if _, err := f.svc.Deliver(context.Background(), attempt.ID, success()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on duplicate callback, got %v", err)
	}
	if len(f.payments.verifies) != 1 {
		t.Fatalf("verify must be called at most once, got %d", len(f.payments.verifies))
	}
}

func TestCheckoutService_VerificationFailureLeavesCart(t *testing.T) {
	f := newCheckoutFixture(userSession())
	f.payments.verifyFn = func(context.Context, domain.VerifyPaymentInput) error {
		return backendErr(400, "Invalid signature")
	}
	attempt, err := f.svc.Begin(context.Background(), "Street 1")
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}

	done, err := f.svc.Deliver(context.Background(), attempt.ID, success())
	if !errors.Is(err, domain.ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	if done.State != domain.CheckoutVerificationFailed {
		t.Fatalf("expected verification_failed, got %s", done.State)
	}
	if f.cart.refreshes != 0 {
		t.Fatalf("cart must not refresh after failed verification")
	}
	if len(f.nav.visits) != 0 {
		t.Fatalf("expected no navigation, got %v", f.nav.visits)
	}
	if got := f.notes.last(); got.message != "Payment verification failed. Contact support." {
		t.Fatalf("unexpected notification %+v", got)
	}
}

func TestCheckoutService_DismissAndFailureSkipBackend(t *testing.T) {
	cases := []struct {
		name    string
		event   WidgetEvent
		state   domain.CheckoutState
		message string
	}{
		{"dismissed", WidgetDismissed{}, domain.CheckoutCancelled, "Payment cancelled"},
		{"failed", WidgetFailed{Reason: "card declined"}, domain.CheckoutPaymentFailed, "Payment failed. Please try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newCheckoutFixture(userSession())
			attempt, err := f.svc.Begin(context.Background(), "Street 1")
			if err != nil {
				t.Fatalf("Begin returned error: %v", err)
			}
			done, err := f.svc.Deliver(context.Background(), attempt.ID, tc.event)
			if err != nil {
				t.Fatalf("Deliver returned error: %v", err)
			}
			if done.State != tc.state {
				t.Fatalf("expected %s, got %s", tc.state, done.State)
			}
			if len(f.payments.verifies) != 0 || f.cart.refreshes != 0 {
				t.Fatalf("expected no backend calls and no refresh")
			}
			if got := f.notes.last(); got.message != tc.message {
				t.Fatalf("unexpected notification %+v", got)
			}
		})
	}
}

func TestCheckoutService_GuardBlocksSecondVerification(t *testing.T) {
	f := newCheckoutFixture(userSession())
	f.guard.seen = map[string]bool{"order_1": true}
	attempt, err := f.svc.Begin(context.Background(), "Street 1")
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}

	done, err := f.svc.Deliver(context.Background(), attempt.ID, success())
	if !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
	if done.State != domain.CheckoutVerificationFailed || len(f.payments.verifies) != 0 {
		t.Fatalf("expected no verify call, got state=%s verifies=%d", done.State, len(f.payments.verifies))
	}
}

func TestCheckoutService_GuardErrorStillVerifies(t *testing.T) {
	f := newCheckoutFixture(userSession())
	f.guard.err = errors.New("redis down")
	attempt, _ := f.svc.Begin(context.Background(), "Street 1")

	if _, err := f.svc.Deliver(context.Background(), attempt.ID, success()); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}
	if len(f.payments.verifies) != 1 {
		t.Fatalf("expected verification to proceed")
	}
}

func TestCheckoutService_GuardDecisionCountedOnce(t *testing.T) {
	f := newCheckoutFixture(userSession())
	f.svc.guard = storage.NewMemoryGuard()
	claimed := metrics.VerificationGuardTotal.WithLabelValues("claimed")
	before := testutil.ToFloat64(claimed)

	attempt, _ := f.svc.Begin(context.Background(), "Street 1")
	if _, err := f.svc.Deliver(context.Background(), attempt.ID, success()); err != nil {
		t.Fatalf("Deliver returned error: %v", err)
	}
	if got := testutil.ToFloat64(claimed) - before; got != 1 {
		t.Fatalf("expected one claimed count per verification, got %v", got)
	}
}

// ---- session lifecycle ----

func otherUser() domain.Session {
	return domain.Session{Token: "tok9", User: &domain.User{ID: 9, Name: "Bea", Email: "bea@example.com", Role: domain.RoleUser}}
}

func TestCheckoutService_SessionChangeCancelsOpenAttempt(t *testing.T) {
	sess := userSession()
	f := newCheckoutFixture(sess)
	first, err := f.svc.Begin(context.Background(), "Street 1")
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}

	sess.sess = otherUser()
	f.svc.OnSessionChange(sess.sess)

	ended, _ := f.svc.Attempt(first.ID)
	if ended.State != domain.CheckoutCancelled || ended.Reason != "session ended" {
		t.Fatalf("expected cancelled with reason session ended, got %s %q", ended.State, ended.Reason)
	}
	if len(f.journal.records) != 1 || f.journal.records[0].ID != first.ID {
		t.Fatalf("expected the cancelled attempt to be journaled, got %d records", len(f.journal.records))
	}
	if len(f.widget.closed) != 1 || f.widget.closed[0] != first.ID {
		t.Fatalf("expected the widget to be closed, got %v", f.widget.closed)
	}

	second, err := f.svc.Begin(context.Background(), "Street 9")
	if err != nil {
		t.Fatalf("next user's Begin returned error: %v", err)
	}
	if second.UserID != 9 {
		t.Fatalf("expected attempt for user 9, got %d", second.UserID)
	}
	if _, err := f.svc.Deliver(context.Background(), first.ID, success()); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound for the previous user's attempt, got %v", err)
	}
	if len(f.payments.verifies) != 0 {
		t.Fatalf("expected no verification, got %d", len(f.payments.verifies))
	}
}

func TestCheckoutService_LogoutCancelsOpenAttempt(t *testing.T) {
	sess := userSession()
	f := newCheckoutFixture(sess)
	attempt, _ := f.svc.Begin(context.Background(), "Street 1")

	sess.sess = domain.Session{}
	f.svc.OnSessionChange(sess.sess)

	if f.svc.State() != domain.CheckoutIdle {
		t.Fatalf("expected idle after logout, got %s", f.svc.State())
	}
	if _, err := f.svc.Deliver(context.Background(), attempt.ID, WidgetDismissed{}); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	sess.sess = userSession().sess
	f.svc.OnSessionChange(sess.sess)
	if _, err := f.svc.Begin(context.Background(), "Street 1"); err != nil {
		t.Fatalf("Begin after logging back in returned error: %v", err)
	}
}

func TestCheckoutService_SameUserKeepsAttempt(t *testing.T) {
	sess := userSession()
	f := newCheckoutFixture(sess)
	attempt, _ := f.svc.Begin(context.Background(), "Street 1")

	f.svc.OnSessionChange(sess.sess)

	if kept, _ := f.svc.Attempt(attempt.ID); kept.State != domain.CheckoutWidgetOpen {
		t.Fatalf("expected widget_open to survive, got %s", kept.State)
	}
	if len(f.journal.records) != 0 {
		t.Fatalf("expected nothing journaled, got %d", len(f.journal.records))
	}
}

func TestCheckoutService_DeliverRejectsOtherUser(t *testing.T) {
	sess := userSession()
	f := newCheckoutFixture(sess)
	attempt, _ := f.svc.Begin(context.Background(), "Street 1")

	sess.sess = otherUser()
	if _, err := f.svc.Begin(context.Background(), "Street 9"); err != nil {
		t.Fatalf("another user's in-flight attempt must not block Begin: %v", err)
	}
	if _, err := f.svc.Deliver(context.Background(), attempt.ID, success()); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
	if len(f.payments.verifies) != 0 || f.cart.refreshes != 0 {
		t.Fatalf("expected no verification and no refresh, got %d / %d", len(f.payments.verifies), f.cart.refreshes)
	}
}

func TestCheckoutService_IntentArrivingAfterLogout(t *testing.T) {
	sess := userSession()
	f := newCheckoutFixture(sess)
	f.payments.createFn = func(context.Context, []domain.OrderItem, string) (*domain.PaymentIntent, error) {
		sess.sess = domain.Session{}
		f.svc.OnSessionChange(sess.sess)
		return &domain.PaymentIntent{ID: "order_1", Amount: 150000, Currency: "INR", TotalAmount: decimal.NewFromInt(1500)}, nil
	}

	attempt, err := f.svc.Begin(context.Background(), "Street 1")
	if !errors.Is(err, domain.ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded, got %v", err)
	}
	if attempt.State != domain.CheckoutCancelled || len(f.widget.opened) != 0 {
		t.Fatalf("expected cancelled without opening the widget, got %s opened=%d", attempt.State, len(f.widget.opened))
	}
	if len(f.journal.records) != 1 {
		t.Fatalf("expected one journal record, got %d", len(f.journal.records))
	}
}

func TestCheckoutService_DeliverUnknownAttempt(t *testing.T) {
	f := newCheckoutFixture(userSession())
	if _, err := f.svc.Deliver(context.Background(), "nope", WidgetDismissed{}); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound, got %v", err)
	}
}

func TestCheckoutService_AttemptsAreCopies(t *testing.T) {
	f := newCheckoutFixture(userSession())
	attempt, _ := f.svc.Begin(context.Background(), "Street 1")
	attempt.Items[0].Quantity = 99
	attempt.Intent.ID = "tampered"

	stored, err := f.svc.Attempt(attempt.ID)
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if stored.Items[0].Quantity != 3 || stored.Intent.ID != "order_1" {
		t.Fatalf("stored attempt was mutated through a copy: %+v", stored)
	}
}

func TestCheckoutStateTransitions(t *testing.T) {
	terminal := []domain.CheckoutState{
		domain.CheckoutCompleted, domain.CheckoutVerificationFailed, domain.CheckoutCancelled,
		domain.CheckoutPaymentFailed, domain.CheckoutIntentFailed,
	}
	for _, s := range terminal {
		if !s.IsTerminal() || s.Outcome() == domain.OutcomeNone {
			t.Fatalf("%s should be terminal with an outcome", s)
		}
	}
	if domain.CheckoutIdle.IsTerminal() {
		t.Fatalf("idle is not terminal")
	}
	if domain.CheckoutIntentRequested.CanTransitionTo(domain.CheckoutVerifying) {
		t.Fatalf("intent_requested must not skip the widget")
	}
	if !domain.CheckoutIntentRequested.CanTransitionTo(domain.CheckoutCancelled) {
		t.Fatalf("intent_requested must be cancellable when the session ends")
	}
	if domain.CheckoutCompleted.CanTransitionTo(domain.CheckoutVerifying) {
		t.Fatalf("completed must not re-verify")
	}
}
