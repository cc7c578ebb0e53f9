package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/core/ports"
)

// SortOrder orders a product listing by effective price.
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortPriceAsc  SortOrder = "asc"
	SortPriceDesc SortOrder = "desc"
)

// minServerSearch is the shortest query sent to the search endpoint; shorter
// queries only filter locally.
const minServerSearch = 3

// BrowseQuery describes a catalog listing.
type BrowseQuery struct {
	Category string
	Search   string
	Sort     SortOrder
}

// CartAdder is the slice of the cart orchestrator used by quick-add.
type CartAdder interface {
	AddItem(ctx context.Context, productID int64, size domain.Size, quantity int) error
}

// CatalogService serves product listings. Reads need no session.
type CatalogService struct {
	api      ports.CatalogAPI
	cart     CartAdder
	session  SessionSource
	nav      ports.Navigator
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewCatalogService(api ports.CatalogAPI, cart CartAdder, session SessionSource, nav ports.Navigator, notifier ports.Notifier, log zerolog.Logger) *CatalogService {
	return &CatalogService{api: api, cart: cart, session: session, nav: nav, notifier: notifier, log: log}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.api.SearchProducts(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// ByCategory lists one category; "All Products" or "" lists everything.
func (s *CatalogService) ByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	if isAllCategories(category) {
		return s.List(ctx)
	}
	products, err := s.api.ProductsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list category %q: %w", category, err)
	}
	return products, nil
}

// Browse fetches a listing and applies the local filter and sort. A failed
// server-side search falls back to filtering the base listing.
func (s *CatalogService) Browse(ctx context.Context, q BrowseQuery) ([]domain.Product, error) {
	var (
		products []domain.Product
		err      error
	)
	search := strings.TrimSpace(q.Search)
	if len(search) >= minServerSearch {
		products, err = s.Search(ctx, search)
		if err != nil {
			s.log.Debug().Err(err).Str("query", search).Msg("search failed, filtering locally")
		}
	}
	if products == nil {
		products, err = s.ByCategory(ctx, q.Category)
		if err != nil {
			return nil, err
		}
	}
	return SortProducts(FilterProducts(products, q.Category, search), q.Sort), nil
}

// QuickAdd puts one unit of the first in-stock size in the cart. Anonymous
// shoppers are sent to the login view.
func (s *CatalogService) QuickAdd(ctx context.Context, productID int64) error {
	if !s.session.Current().IsAuthenticated() {
		s.notify("Please login to add to cart")
		if s.nav != nil {
			s.nav.Navigate(ports.ViewLogin)
		}
		return domain.ErrNotAuthenticated
	}
	p, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}
	size, ok := p.FirstInStockSize()
	if !ok {
		s.notify("Out of stock")
		return domain.ErrOutOfStock
	}
	return s.cart.AddItem(ctx, p.ID, size, 1)
}

func (s *CatalogService) notify(msg string) {
	if s.notifier != nil {
		s.notifier.Notify(ports.LevelError, msg)
	}
}

// FilterProducts keeps products in category (empty or "All Products" keeps
// all) whose name or category contains search, case-insensitively.
func FilterProducts(products []domain.Product, category, search string) []domain.Product {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !isAllCategories(category) && p.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Category), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortProducts returns a copy ordered by effective unit price. The default
// order keeps the listing as served.
func SortProducts(products []domain.Product, order SortOrder) []domain.Product {
	out := append([]domain.Product(nil), products...)
	switch order {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectiveUnitPrice().LessThan(out[j].EffectiveUnitPrice())
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].EffectiveUnitPrice().GreaterThan(out[j].EffectiveUnitPrice())
		})
	}
	return out
}

func isAllCategories(category string) bool {
	return category == "" || category == domain.CategoryAll || category == "All"
}
