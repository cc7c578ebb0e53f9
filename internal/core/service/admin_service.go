package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
	"github.com/pulsepr/storefront/internal/core/validate"
)

// AdminService is the back office. Every operation checks the local session
// role before touching the network; the backend remains the authority.
type AdminService struct {
	api      ports.AdminAPI
	session  SessionSource
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewAdminService(api ports.AdminAPI, session SessionSource, notifier ports.Notifier, log zerolog.Logger) *AdminService {
	return &AdminService{api: api, session: session, notifier: notifier, log: log}
}

func (s *AdminService) authorize() error {
	sess := s.session.Current()
	if !sess.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if !sess.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

// ---- products ----

func (s *AdminService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin list products: %w", err)
	}
	return products, nil
}

func (s *AdminService) AddProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	p, err := s.api.AddProduct(ctx, in)
	if err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Failed to create product"))
		return nil, fmt.Errorf("admin add product: %w", err)
	}
	s.notify(ports.LevelSuccess, "Product created!")
	return p, nil
}

func (s *AdminService) UpdateProduct(ctx context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	p, err := s.api.UpdateProduct(ctx, id, in)
	if err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Update failed"))
		return nil, fmt.Errorf("admin update product %d: %w", id, err)
	}
	s.notify(ports.LevelSuccess, "Product updated!")
	return p, nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := s.api.DeleteProduct(ctx, id); err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Delete failed"))
		return fmt.Errorf("admin delete product %d: %w", id, err)
	}
	s.notify(ports.LevelSuccess, "Product deleted")
	return nil
}

// UploadImages uploads product images and returns their URLs.
func (s *AdminService) UploadImages(ctx context.Context, files []ports.UploadFile) ([]string, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.NewValidationError("Select at least one image")
	}
	for _, f := range files {
		if len(f.Content) == 0 {
			return nil, domain.NewValidationError(fmt.Sprintf("%s is empty", f.Name))
		}
	}
	urls, err := s.api.UploadImages(ctx, files)
	if err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Upload failed"))
		return nil, fmt.Errorf("admin upload images: %w", err)
	}
	s.notify(ports.LevelSuccess, "Images uploaded!")
	return urls, nil
}

// ---- orders ----

// ListOrders lists every order, optionally keeping only one status.
func (s *AdminService) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown order status %q", status))
	}
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		s.notify(ports.LevelError, "Failed to load orders")
		return nil, fmt.Errorf("admin list orders: %w", err)
	}
	return domain.FilterOrders(orders, status), nil
}

func (s *AdminService) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if !status.Valid() {
		return domain.NewValidationError(fmt.Sprintf("unknown order status %q", status))
	}
	if err := s.api.UpdateOrderStatus(ctx, id, status); err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Update failed"))
		return fmt.Errorf("admin update order %d: %w", id, err)
	}
	s.notify(ports.LevelSuccess, "Status updated")
	return nil
}

// ---- users & stats ----

func (s *AdminService) ListUsers(ctx context.Context) ([]domain.UserRecord, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin list users: %w", err)
	}
	return users, nil
}

func (s *AdminService) Stats(ctx context.Context) (*domain.Stats, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	stats, err := s.api.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return stats, nil
}

// ---- offers ----

func (s *AdminService) ListOffers(ctx context.Context) ([]domain.Offer, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	offers, err := s.api.ListOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("admin list offers: %w", err)
	}
	return offers, nil
}

func (s *AdminService) CreateOffer(ctx context.Context, in domain.OfferInput) (*domain.Offer, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	offer, err := s.api.CreateOffer(ctx, in)
	if err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Failed to create offer"))
		return nil, fmt.Errorf("admin create offer: %w", err)
	}
	s.notify(ports.LevelSuccess, "Offer created!")
	return offer, nil
}

// ApplyOffer applies an offer to one category, or to every product when the
// category is empty or "All Products".
func (s *AdminService) ApplyOffer(ctx context.Context, offerID int64, category string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if offerID <= 0 {
		return domain.NewValidationError("Select an offer")
	}
	in := ports.ApplyOfferInput{OfferID: offerID}
	label := domain.CategoryAll
	if !isAllCategories(category) {
		if err := validate.Var("category", category, "oneof=Oversized Regular 'Graphic Tee' Hoodie"); err != nil {
			return err
		}
		in.Category = category
		label = category
	}
	if err := s.api.ApplyOffer(ctx, in); err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Apply failed"))
		return fmt.Errorf("admin apply offer %d: %w", offerID, err)
	}
	s.notify(ports.LevelSuccess, fmt.Sprintf("Offer applied to %s!", label))
	return nil
}

// ---- designs ----

func (s *AdminService) ListDesigns(ctx context.Context) ([]domain.CustomDesign, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	designs, err := s.api.ListDesigns(ctx)
	if err != nil {
		s.notify(ports.LevelError, "Failed to load custom designs")
		return nil, fmt.Errorf("admin list designs: %w", err)
	}
	return designs, nil
}

func (s *AdminService) UpdateDesignStatus(ctx context.Context, id int64, status domain.DesignStatus, adminNote string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if !status.Valid() {
		return domain.NewValidationError(fmt.Sprintf("unknown design status %q", status))
	}
	if err := s.api.UpdateDesignStatus(ctx, id, status, strings.TrimSpace(adminNote)); err != nil {
		s.notify(ports.LevelError, domain.UserMessage(err, "Failed to update status"))
		return fmt.Errorf("admin update design %d: %w", id, err)
	}
	s.notify(ports.LevelSuccess, fmt.Sprintf("Design marked as %s", status))
	return nil
}

// DesignToProductDraft prefills a product form from a custom design. Nothing
// is submitted; the admin reviews the draft and calls AddProduct.
func (s *AdminService) DesignToProductDraft(d domain.CustomDesign) (domain.ProductInput, error) {
	if err := s.authorize(); err != nil {
		return domain.ProductInput{}, err
	}
	return d.ProductDraft(), nil
}

func (s *AdminService) notify(level ports.Level, msg string) {
	if s.notifier != nil {
		s.notifier.Notify(level, msg)
	}
}

func validateProduct(in domain.ProductInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	var fields []string
	if !in.Price.IsPositive() {
		fields = append(fields, "price must be greater than 0")
	}
	if in.DiscountPrice != nil && in.DiscountPrice.IsNegative() {
		fields = append(fields, "discountPrice must not be negative")
	}
	for _, st := range in.Sizes {
		if !st.Size.Valid() {
			fields = append(fields, fmt.Sprintf("size %q is not one of: S M L XL XXL", st.Size))
		}
		if st.StockQuantity < 0 {
			fields = append(fields, fmt.Sprintf("stock for %s must not be negative", st.Size))
		}
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
