package mockapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pulsepr/storefront/internal/core/domain"
)

type account struct {
	domain.UserRecord
	hash []byte
	// generation is embedded in issued tokens; bumping it revokes them.
	generation int
}

type cartLine struct {
	id        int64
	productID int64
	size      domain.Size
	quantity  int
}

// intent is an issued payment order awaiting verification.
type intent struct {
	userID  int64
	items   []domain.OrderItem
	address string
	total   decimal.Decimal
	paid    bool
}

// store is the emulator's whole state. Every field is guarded by mu.
type store struct {
	mu sync.Mutex

	nextID   int64
	accounts map[int64]*account
	products map[int64]*domain.Product
	carts    map[int64][]cartLine
	intents  map[string]*intent
	orders   []domain.Order
	offers   []domain.Offer
	designs  map[int64]*domain.CustomDesign
	now      func() time.Time
}

func newStore() *store {
	return &store{
		accounts: make(map[int64]*account),
		products: make(map[int64]*domain.Product),
		carts:    make(map[int64][]cartLine),
		intents:  make(map[string]*intent),
		designs:  make(map[int64]*domain.CustomDesign),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// id must be called with s.mu held.
func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *store) accountByEmail(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a
		}
	}
	return nil
}

func (s *store) productList(activeOnly bool) []domain.Product {
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if activeOnly && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) cartOf(userID int64) domain.Cart {
	lines := s.carts[userID]
	cart := domain.Cart{Items: make([]domain.CartItem, 0, len(lines))}
	for _, l := range lines {
		p, ok := s.products[l.productID]
		if !ok {
			continue
		}
		cart.Items = append(cart.Items, domain.CartItem{ID: l.id, Product: *p, Size: l.size, Quantity: l.quantity})
	}
	return cart
}

// price totals items at the current effective prices.
func (s *store) price(items []domain.OrderItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, it := range items {
		p, ok := s.products[it.ProductID]
		if !ok {
			return decimal.Zero, errProductNotFound
		}
		if it.Quantity < 1 || !p.HasSize(it.Size) {
			return decimal.Zero, errBadLine
		}
		if p.Stock(it.Size) < it.Quantity {
			return decimal.Zero, errInsufficientStock
		}
		total = total.Add(p.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total, nil
}

func (s *store) takeStock(items []domain.OrderItem) {
	for _, it := range items {
		p := s.products[it.ProductID]
		for i := range p.Sizes {
			if p.Sizes[i].Size == it.Size {
				p.Sizes[i].StockQuantity -= it.Quantity
			}
		}
	}
}
