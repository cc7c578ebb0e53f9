package domain

import "github.com/shopspring/decimal"

// CartItem is one (product, size) line of the server-side cart.
type CartItem struct {
	ID       int64   `json:"id"`
	Product  Product `json:"product"`
	Size     Size    `json:"size"`
	Quantity int     `json:"quantity"`
}

// LineTotal is the effective unit price times the quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Product.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the local view of the authenticated user's server-side cart.
type Cart struct {
	Items []CartItem `json:"items"`
}

// ItemCount is the sum of line quantities.
func (c *Cart) ItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Total is the sum of line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// OrderItems snapshots the cart as the line items sent at checkout.
func (c *Cart) OrderItems() []OrderItem {
	if c == nil {
		return nil
	}
	out := make([]OrderItem, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, OrderItem{ProductID: it.Product.ID, Size: it.Size, Quantity: it.Quantity})
	}
	return out
}

// Clone returns a deep copy of the cart lines.
func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return &Cart{Items: items}
}

// CartSummary is an immutable snapshot of the cart with its derived values.
type CartSummary struct {
	Items     []CartItem      `json:"items"`
	ItemCount int             `json:"itemCount"`
	Total     decimal.Decimal `json:"total"`
}

// Summary builds a CartSummary for c; a nil cart yields an empty summary.
func (c *Cart) Summary() CartSummary {
	clone := c.Clone()
	items := []CartItem{}
	if clone != nil {
		items = clone.Items
	}
	return CartSummary{Items: items, ItemCount: c.ItemCount(), Total: c.Total()}
}
