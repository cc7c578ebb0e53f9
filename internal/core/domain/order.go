package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment status of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderPaid      OrderStatus = "Paid"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every order status in display order.
var OrderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

// Valid reports whether s belongs to the order status enumeration.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// OrderLine is one purchased line of an order.
type OrderLine struct {
	ID       int64           `json:"id"`
	Product  *Product        `json:"product,omitempty"`
	Size     Size            `json:"size"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is a placed order as the backend reports it.
type Order struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	User        *User           `json:"user,omitempty"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Address     string          `json:"address"`
	OrderStatus OrderStatus     `json:"orderStatus"`
	PaymentID   string          `json:"paymentId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// FilterOrders keeps the orders with the given status; an empty status keeps all.
func FilterOrders(orders []Order, status OrderStatus) []Order {
	if status == "" {
		return orders
	}
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.OrderStatus == status {
			out = append(out, o)
		}
	}
	return out
}

// TopProduct is an entry of the admin dashboard's best sellers.
type TopProduct struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Sold     int    `json:"sold"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	TotalOrders        int             `json:"totalOrders"`
	TotalUsers         int             `json:"totalUsers"`
	TopSellingProducts []TopProduct    `json:"topSellingProducts"`
}
