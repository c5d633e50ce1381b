package model

import (
	"time"

	"github.com/google/uuid"
)

// Checkout intent statuses. Transitions are linear:
// created -> fulfilled, or created -> expired.
const (
	IntentStatusCreated   = "created"
	IntentStatusFulfilled = "fulfilled"
	IntentStatusExpired   = "expired"
)

// CheckoutIntent is the durable record of a pending checkout, persisted
// before the payment provider is called. The webhook reconciler reads this
// row instead of the user's live cart, so later cart edits cannot change
// what was paid for.
type CheckoutIntent struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ProviderRef   string          `json:"providerRef" db:"provider_ref"`
	UserID        string          `json:"userId" db:"user_id"`
	Items         []IntentItem    `json:"items" db:"items"`
	Shipping      ShippingAddress `json:"shipping"`
	CouponCode    *string         `json:"couponCode,omitempty" db:"coupon_code"`
	ItemsPrice    int64           `json:"itemsPrice" db:"items_price"`
	ShippingPrice int64           `json:"shippingPrice" db:"shipping_price"`
	Discount      int64           `json:"discount" db:"discount"`
	TotalPrice    int64           `json:"totalPrice" db:"total_price"`
	Status        string          `json:"status" db:"status"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// IntentItem is a server-validated line item frozen into a checkout
// intent: catalogue price at validation time, never the client's.
type IntentItem struct {
	ProductID string `json:"productId"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CreateIntentRequest represents the checkout payload.
type CreateIntentRequest struct {
	Items      []OrderItemRequest `json:"items"`
	Shipping   ShippingAddress    `json:"shipping"`
	CouponCode *string            `json:"couponCode,omitempty"`
}

// CreateIntentResponse carries the provider references the storefront
// needs to confirm the payment client-side.
type CreateIntentResponse struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
}
