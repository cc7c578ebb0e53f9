package mockapi

import (
	"github.com/shopspring/decimal"

	"github.com/pulsepr/storefront/internal/core/domain"
)

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func discount(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func stock(n int) []domain.SizeStock {
	out := make([]domain.SizeStock, 0, len(domain.Sizes))
	for _, s := range domain.Sizes {
		out = append(out, domain.SizeStock{Size: s, StockQuantity: n})
	}
	return out
}

var demoCatalog = []domain.ProductInput{
	{Name: "Midnight Oversized Tee", Brand: "PULSEPR", Category: domain.CategoryOversized, Price: price(1000), Images: []string{"/uploads/products/midnight.png"}, Sizes: stock(20), IsActive: true,
		Description: "Heavyweight drop-shoulder tee."},
	{Name: "Essential Regular Tee", Brand: "PULSEPR", Category: domain.CategoryRegular, Price: price(700), DiscountPrice: discount(599), Images: []string{"/uploads/products/essential.png"}, Sizes: stock(30), IsActive: true,
		Description: "Everyday cotton crew neck."},
	{Name: "Neon Skull Graphic Tee", Brand: "PULSEPR", Category: domain.CategoryGraphicTee, Price: price(900), Images: []string{"/uploads/products/neon-skull.png"}, Sizes: stock(15), IsActive: true,
		Description: "Glow print on washed black."},
	{Name: "Street Hoodie", Brand: "PULSEPR", Category: domain.CategoryHoodie, Price: price(2000), Images: []string{"/uploads/products/street-hoodie.png"}, Sizes: stock(10), IsActive: true,
		Description: "Brushed fleece pullover hoodie."},
	{Name: "Archive Zip Hoodie", Brand: "PULSEPR", Category: domain.CategoryHoodie, Price: price(2500), Images: []string{"/uploads/products/archive-zip.png"}, Sizes: []domain.SizeStock{{Size: domain.SizeM, StockQuantity: 0}, {Size: domain.SizeL, StockQuantity: 3}}, IsActive: false,
		Description: "Retired colourway."},
}

func (s *Server) seed() {
	for _, in := range demoCatalog {
		s.AddProduct(in)
	}
	s.log.Info().Int("products", len(demoCatalog)).Msg("demo catalog seeded")
}

// AddProduct inserts a product directly, bypassing the admin API.
func (s *Server) AddProduct(in domain.ProductInput) domain.Product {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p := &domain.Product{ID: s.store.id(), CreatedAt: s.store.now()}
	fromInput(p, in)
	s.store.products[p.ID] = p
	return *p
}

// Product returns the stored product with the given id.
func (s *Server) Product(id int64) (domain.Product, bool) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.products[id]
	if !ok {
		return domain.Product{}, false
	}
	return *p, true
}
