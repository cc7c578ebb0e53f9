package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCart_Totals(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{ID: 1, Product: Product{ID: 1, Price: decimal.NewFromInt(1000), DiscountPrice: dec("750")}, Size: SizeM, Quantity: 2},
		{ID: 2, Product: Product{ID: 2, Price: decimal.NewFromInt(499)}, Size: SizeL, Quantity: 3},
	}}

	if c.ItemCount() != 5 {
		t.Fatalf("ItemCount = %d, want 5", c.ItemCount())
	}
	if want := decimal.NewFromInt(750*2 + 499*3); !c.Total().Equal(want) {
		t.Fatalf("Total = %s, want %s", c.Total(), want)
	}

	items := c.OrderItems()
	if len(items) != 2 || items[0] != (OrderItem{ProductID: 1, Size: SizeM, Quantity: 2}) {
		t.Fatalf("unexpected order items %+v", items)
	}
}

func TestCart_NilIsEmpty(t *testing.T) {
	var c *Cart
	if !c.IsEmpty() || c.ItemCount() != 0 || !c.Total().IsZero() || c.OrderItems() != nil || c.Clone() != nil {
		t.Fatalf("nil cart must behave as empty")
	}
	s := c.Summary()
	if s.Items == nil || len(s.Items) != 0 || s.ItemCount != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
}

func TestCart_CloneDoesNotAlias(t *testing.T) {
	c := &Cart{Items: []CartItem{{ID: 1, Quantity: 1}}}
	clone := c.Clone()
	clone.Items[0].Quantity = 7
	if c.Items[0].Quantity != 1 {
		t.Fatalf("clone aliases the original")
	}
}
