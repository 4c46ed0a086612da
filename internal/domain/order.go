package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Order represents a persisted purchase. Checkout only ever produces a pending
// order; later status transitions happen outside the checkout path.
// TotalAmount always equals the sum of item subtotals.
type Order struct {
	ID                 string
	BuyerID            string
	Status             OrderStatus
	TotalAmount        decimal.Decimal
	Currency           string
	ShippingAddress    string
	ShippingCity       string
	ShippingPostalCode string
	ShippingCountry    string
	CreatedAt          time.Time
	Items              []OrderItem
}

// OrderItem snapshots one listing at order time. UnitPrice is decoupled from
// any later change to the listing.
type OrderItem struct {
	ID        string
	OrderID   string
	ListingID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
