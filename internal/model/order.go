package model

import (
	"time"

	"github.com/google/uuid"
)

// Order lifecycle statuses. Transitions are linear:
// pending -> paid -> delivered.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusDelivered = "delivered"
)

// Payment result statuses recorded on an order.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
)

// ShippingAddress holds the delivery destination. All fields are required.
type ShippingAddress struct {
	FullName string `json:"fullName" db:"full_name"`
	Street   string `json:"street" db:"street"`
	City     string `json:"city" db:"city"`
	Phone    string `json:"phone" db:"phone"`
}

// Order represents a customer order. PaymentID is the external payment
// reference and is the natural deduplication key for provider-confirmed
// orders.
type Order struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	UserID        string          `json:"userId" db:"user_id"`
	PaymentID     *string         `json:"paymentId,omitempty" db:"payment_id"`
	PaymentStatus string          `json:"paymentStatus" db:"payment_status"`
	Status        string          `json:"status" db:"status"`
	CouponCode    *string         `json:"couponCode,omitempty" db:"coupon_code"`
	ItemsPrice    int64           `json:"itemsPrice" db:"items_price"`
	ShippingPrice int64           `json:"shippingPrice" db:"shipping_price"`
	Discount      int64           `json:"discount" db:"discount"`
	TotalPrice    int64           `json:"totalPrice" db:"total_price"`
	Shipping      ShippingAddress `json:"shipping"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. Name and Price are
// captured at order time so later catalogue edits do not rewrite history.
type OrderItem struct {
	ID        uuid.UUID `json:"-" db:"id"`
	OrderID   uuid.UUID `json:"-" db:"order_id"`
	ProductID string    `json:"productId" db:"product_id"`
	Name      string    `json:"name" db:"name"`
	Price     int64     `json:"price" db:"price"`
	Quantity  int       `json:"quantity" db:"quantity"`
}

// OrderItemRequest represents a single item in an order or checkout request.
type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	// Price is accepted from clients for display parity but is never
	// trusted; totals are always recomputed from the catalogue.
	Price int64 `json:"price,omitempty"`
}

// CreateOrderRequest represents the direct order creation payload for
// non-card payment methods (efectivo, transfer).
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	Shipping      ShippingAddress    `json:"shipping"`
	CouponCode    *string            `json:"couponCode,omitempty"`
	PaymentMethod string             `json:"paymentMethod"`
	TotalPrice    int64              `json:"totalPrice"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	Order *Order      `json:"order"`
	Items []OrderItem `json:"items"`
}

// UpdateOrderStatusRequest represents an admin status transition.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}
