package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Prices travel as JSON numbers, as the backend sends them.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Size is a garment size token.
type Size string

const (
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

// Sizes lists every size the storefront sells, smallest first.
var Sizes = []Size{SizeS, SizeM, SizeL, SizeXL, SizeXXL}

// Valid reports whether s belongs to the size enumeration.
func (s Size) Valid() bool {
	for _, known := range Sizes {
		if s == known {
			return true
		}
	}
	return false
}

const (
	CategoryOversized  = "Oversized"
	CategoryRegular    = "Regular"
	CategoryGraphicTee = "Graphic Tee"
	CategoryHoodie     = "Hoodie"

	// CategoryAll is the pseudo-category meaning "no category filter".
	CategoryAll = "All Products"
)

// Categories lists the product categories in display order.
var Categories = []string{CategoryOversized, CategoryRegular, CategoryGraphicTee, CategoryHoodie}

// SizeStock is the stock held for one size of a product.
type SizeStock struct {
	Size          Size `json:"size"`
	StockQuantity int  `json:"stockQuantity"`
}

// ProductImage is an uploaded product image.
type ProductImage struct {
	ImageURL string `json:"imageUrl"`
}

// Product is a catalog entry.
type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	Brand         string           `json:"brand"`
	Description   string           `json:"description"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Images        []ProductImage   `json:"images"`
	Sizes         []SizeStock      `json:"sizes"`
	IsActive      bool             `json:"isActive"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// HasDiscount reports whether the discount price takes effect: it must be
// present, positive and strictly below the list price.
func (p Product) HasDiscount() bool {
	if p.DiscountPrice == nil {
		return false
	}
	d := *p.DiscountPrice
	return d.IsPositive() && d.LessThan(p.Price)
}

// EffectiveUnitPrice is the price a shopper pays for one unit.
func (p Product) EffectiveUnitPrice() decimal.Decimal {
	if p.HasDiscount() {
		return *p.DiscountPrice
	}
	return p.Price
}

// DiscountPercent is the rounded saving shown on product cards, or 0.
func (p Product) DiscountPercent() int64 {
	if !p.HasDiscount() || p.Price.IsZero() {
		return 0
	}
	saved := p.Price.Sub(*p.DiscountPrice).Div(p.Price).Mul(decimal.NewFromInt(100))
	return saved.Round(0).IntPart()
}

// HasSize reports whether the product is offered in size s.
func (p Product) HasSize(s Size) bool {
	for _, st := range p.Sizes {
		if st.Size == s {
			return true
		}
	}
	return false
}

// FirstInStockSize returns the first size with stock, in the product's order.
func (p Product) FirstInStockSize() (Size, bool) {
	for _, st := range p.Sizes {
		if st.StockQuantity > 0 {
			return st.Size, true
		}
	}
	return "", false
}

// Stock returns the stock quantity held for size s.
func (p Product) Stock(s Size) int {
	for _, st := range p.Sizes {
		if st.Size == s {
			return st.StockQuantity
		}
	}
	return 0
}

// ProductInput is the payload used by the admin to create or update products.
type ProductInput struct {
	Name          string           `json:"name"        validate:"required"`
	Brand         string           `json:"brand"`
	Description   string           `json:"description"`
	Category      string           `json:"category"    validate:"required,oneof=Oversized Regular 'Graphic Tee' Hoodie"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Images        []string         `json:"images"      validate:"min=1"`
	Sizes         []SizeStock      `json:"sizes"`
	IsActive      bool             `json:"isActive"`
}
