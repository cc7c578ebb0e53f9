package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/core/validate"
)

var designExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".svg": true}

// AccountService covers the signed-in user's orders and custom designs.
type AccountService struct {
	api      ports.AccountAPI
	session  SessionSource
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewAccountService(api ports.AccountAPI, session SessionSource, notifier ports.Notifier, log zerolog.Logger) *AccountService {
	return &AccountService{api: api, session: session, notifier: notifier, log: log}
}

// MyOrders lists the user's orders. Failures yield an empty list.
func (s *AccountService) MyOrders(ctx context.Context) ([]domain.Order, error) {
	if !s.session.Current().IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	orders, err := s.api.MyOrders(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("order history unavailable")
		return []domain.Order{}, nil
	}
	return orders, nil
}

// UploadDesign submits a print design for review.
func (s *AccountService) UploadDesign(ctx context.Context, in domain.DesignUpload) (*domain.CustomDesign, error) {
	if !s.session.Current().IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if len(in.Content) == 0 {
		return nil, domain.NewValidationError("Please select an image file first")
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if !designExtensions[strings.ToLower(filepath.Ext(in.FileName))] {
		return nil, domain.NewValidationError("design must be a PNG, JPG, WEBP or SVG image")
	}

	design, err := s.api.UploadDesign(ctx, in)
	if err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Failed to upload design"))
		return nil, fmt.Errorf("upload design: %w", err)
	}
	s.notify(ports.LevelSuccess, "Design uploaded successfully!")
	return design, nil
}

func (s *AccountService) MyDesigns(ctx context.Context) ([]domain.CustomDesign, error) {
	if !s.session.Current().IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	designs, err := s.api.MyDesigns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	return designs, nil
}

func (s *AccountService) GetDesign(ctx context.Context, id int64) (*domain.CustomDesign, error) {
	if !s.session.Current().IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	d, err := s.api.GetDesign(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get design %d: %w", id, err)
	}
	return d, nil
}

// DeleteDesign withdraws a design. The backend decides whether the design is
// still deletable; its refusal is surfaced as is.
func (s *AccountService) DeleteDesign(ctx context.Context, id int64) error {
	if !s.session.Current().IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := s.api.DeleteDesign(ctx, id); err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Failed to delete design"))
		return fmt.Errorf("delete design %d: %w", id, err)
	}
	s.notify(ports.LevelSuccess, "Design deleted")
	return nil
}

func (s *AccountService) notify(level ports.Level, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(level, msg)
	}
}
