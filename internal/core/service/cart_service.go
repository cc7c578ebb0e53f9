package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/core/validate"
	"github.com/pulsepr/storefront/internal/metrics"
)

// SessionSource exposes the current session to orchestrators.
type SessionSource interface {
	Current() domain.Session
}

// CartService keeps the local view of the server-side cart. The local cart is
// assigned only by refresh and by the anonymous clear; mutations go to the
// backend and are followed by a full refresh.
type CartService struct {
	api      ports.CartAPI
	session  SessionSource
	notifier ports.Notifier
	log      zerolog.Logger

	mu      sync.Mutex
	cart    *domain.Cart
	started uint64
	applied uint64
}

func NewCartService(api ports.CartAPI, session SessionSource, notifier ports.Notifier, log zerolog.Logger) *CartService {
	return &CartService{api: api, session: session, notifier: notifier, log: log}
}

// OnSessionChange refreshes on sign-in and clears on sign-out. It is meant to
// be registered with SessionService.Subscribe.
func (s *CartService) OnSessionChange(sess domain.Session) {
	if sess.IsAuthenticated() {
		s.Refresh(context.Background())
		return
	}
	s.clear()
}

// Refresh replaces the local cart with the server's. Failures are not surfaced
// and leave the cart empty. When refreshes overlap, the last one started wins.
func (s *CartService) Refresh(ctx context.Context) {
	if !s.session.Current().IsAuthenticated() {
		s.clear()
		return
	}

	seq := s.begin()
	cart, err := s.api.GetCart(ctx)
	if err != nil {
		s.log.Debug().Err(err).Uint64("seq", seq).Msg("cart refresh failed, resetting")
		cart = nil
	}
	if !s.apply(seq, cart) {
		s.log.Debug().Uint64("seq", seq).Msg("stale cart refresh dropped")
	}
}

// AddItem adds quantity units of productID in size to the cart.
func (s *CartService) AddItem(ctx context.Context, productID int64, size domain.Size, quantity int) error {
	if !s.session.Current().IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := validateLine(size, quantity); err != nil {
		return err
	}

	err := s.api.AddItem(ctx, productID, size, quantity)
	countMutation("add", err)
	if err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Failed to add item"))
		return fmt.Errorf("add cart item: %w", err)
	}
	s.notify(ports.LevelSuccess, "Added to cart!")
	s.Refresh(ctx)
	return nil
}

// AddProductItem is AddItem with the size also checked against the product's
// own size list.
func (s *CartService) AddProductItem(ctx context.Context, p domain.Product, size domain.Size, quantity int) error {
	if !s.session.Current().IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := validateLine(size, quantity); err != nil {
		return err
	}
	if !p.HasSize(size) {
		return &domain.ValidationError{Fields: []string{fmt.Sprintf("size %s is not available for %s", size, p.Name)}}
	}
	return s.AddItem(ctx, p.ID, size, quantity)
}

// UpdateItem sets the quantity of an existing line.
func (s *CartService) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	if !s.session.Current().IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := validate.Var("quantity", quantity, "gte=1"); err != nil {
		return err
	}

	err := s.api.UpdateItem(ctx, itemID, quantity)
	countMutation("update", err)
	if err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Failed to update cart"))
		return fmt.Errorf("update cart item: %w", err)
	}
	s.Refresh(ctx)
	return nil
}

// RemoveItem deletes a line. Removing a line that is already gone succeeds.
func (s *CartService) RemoveItem(ctx context.Context, itemID int64) error {
	if !s.session.Current().IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	err := s.api.RemoveItem(ctx, itemID)
	if isNotFound(err) {
		err = nil
	}
	countMutation("remove", err)
	if err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Failed to remove item"))
		return fmt.Errorf("remove cart item: %w", err)
	}
	s.notify(ports.LevelSuccess, "Item removed")
	s.Refresh(ctx)
	return nil
}

// Snapshot returns a copy of the cart with its derived values.
func (s *CartService) Snapshot() domain.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Summary()
}

func (s *CartService) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

func (s *CartService) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

func (s *CartService) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	return s.started
}

func (s *CartService) apply(seq uint64, cart *domain.Cart) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		return false
	}
	s.applied = seq
	s.cart = cart.Clone()
	return true
}

func (s *CartService) clear() {
	s.apply(s.begin(), nil)
}

func (s *CartService) notify(level ports.Level, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(level, msg)
	}
}

func validateLine(size domain.Size, quantity int) error {
	var fields []string
	if err := validate.Var("quantity", quantity, "gte=1"); err != nil {
		fields = append(fields, err.Error())
	}
	if err := validate.Var("size", string(size), "size"); err != nil {
		fields = append(fields, err.Error())
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func countMutation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.CartMutationsTotal.WithLabelValues(op, result).Inc()
}

func isNotFound(err error) bool {
	var he *domain.HTTPError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}
