package service

import (
	"context"

	"tienda/internal/model"
	"tienda/internal/payment"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// Create adds a new product to the catalogue.
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)

	// Update replaces a product's mutable fields.
	Update(ctx context.Context, id string, req *model.ProductRequest) (*model.Product, error)

	// Delete removes a product from the catalogue.
	Delete(ctx context.Context, id string) error
}

// CouponService defines coupon management plus the pure-read validation
// used by checkout.
type CouponService interface {
	// Validate checks a coupon for the given user and subtotal and
	// computes the discount. It never mutates the used-by set, so it is
	// safe to call repeatedly (cart display, checkout, reconciliation).
	Validate(ctx context.Context, code, userID string, subtotal int64) (int64, *model.Coupon, error)

	// GetAll retrieves all coupons with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Coupon, error)

	// Create adds a new coupon.
	Create(ctx context.Context, req *model.CouponRequest) (*model.Coupon, error)

	// Patch applies a partial update to a coupon.
	Patch(ctx context.Context, id uuid.UUID, patch *model.CouponPatch) (*model.Coupon, error)

	// Delete removes a coupon.
	Delete(ctx context.Context, id uuid.UUID) error

	// Import bulk-creates fixed or percentage coupons from a gzipped
	// code file (local or S3, per the configured loader).
	Import(ctx context.Context, req *model.CouponImportRequest) (*model.CouponImportResponse, error)
}

// CheckoutService builds provider payment intents from validated carts.
type CheckoutService interface {
	// BuildIntent validates the proposed purchase against live stock and
	// coupon state, persists a checkout intent, and requests a provider
	// payment intent for the computed total. No stock is debited and no
	// coupon usage is committed here.
	BuildIntent(ctx context.Context, userID string, req *model.CreateIntentRequest) (*model.CreateIntentResponse, error)
}

// ReconcileService turns verified terminal-payment events into orders.
type ReconcileService interface {
	// HandleEvent materialises an order from a verified payment event:
	// idempotency check by payment reference, order creation, stock
	// debits, coupon redemption. Only an order-creation failure is
	// returned as an error so the provider redelivers; everything after
	// that point is best effort.
	HandleEvent(ctx context.Context, event *payment.VerifiedEvent) error
}

// OrderService defines the direct creation path and order management.
type OrderService interface {
	// CreateDirect creates an order synchronously for non-card payment
	// methods: validation, materialisation and stock debit happen in the
	// same request.
	CreateDirect(ctx context.Context, userID string, req *model.CreateOrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// ListByUser retrieves a user's orders.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Order, error)

	// List retrieves all orders (admin).
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus applies an admin lifecycle transition. Only
	// pending -> paid and paid -> delivered are allowed.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error)
}

// CartService defines cart staging operations.
type CartService interface {
	// Get retrieves a user's cart.
	Get(ctx context.Context, userID string) (*model.Cart, error)

	// Replace overwrites the cart's contents after validating items.
	Replace(ctx context.Context, userID string, req *model.ReplaceCartRequest) (*model.Cart, error)

	// Clear empties the cart.
	Clear(ctx context.Context, userID string) error
}
