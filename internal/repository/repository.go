package repository

import (
	"context"

	"tienda/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue and stock-ledger
// data access.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []string) ([]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, p *model.Product) error

	// Update replaces a product's mutable fields. Returns
	// model.ErrProductNotFound if the product does not exist.
	Update(ctx context.Context, p *model.Product) error

	// Delete removes a product. Returns model.ErrProductNotFound if the
	// product does not exist.
	Delete(ctx context.Context, id string) error

	// DebitStock decrements available stock by quantity as a single
	// conditional update: the decrement applies only when current
	// availability covers the full quantity, so stock can never go
	// negative. Returns the new availability, model.ErrInsufficientStock
	// when the condition fails, or model.ErrProductNotFound. A nil tx
	// runs against the pool.
	DebitStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) (int, error)
}

// CouponRepository defines the interface for coupon and redemption data
// access.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its uppercase-normalised code.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// GetByID retrieves a coupon by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)

	// GetAll retrieves all coupons with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Coupon, error)

	// Create inserts a new coupon.
	Create(ctx context.Context, c *model.Coupon) error

	// CreateBatch inserts many coupons, skipping codes that already
	// exist. Returns the number inserted.
	CreateBatch(ctx context.Context, coupons []model.Coupon) (int, error)

	// Update replaces a coupon's mutable fields.
	Update(ctx context.Context, c *model.Coupon) error

	// Delete removes a coupon. Returns model.ErrCouponNotFound if the
	// coupon does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// HasRedeemed reports whether the user appears in the coupon's
	// used-by set.
	HasRedeemed(ctx context.Context, couponID uuid.UUID, userID string) (bool, error)

	// MarkRedeemed appends the user to the coupon's used-by set. The add
	// is idempotent: redeeming twice leaves exactly one entry.
	MarkRedeemed(ctx context.Context, couponID uuid.UUID, userID string) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order. A nil tx runs against the pool.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items. A nil tx runs
	// against the pool.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByPaymentID retrieves an order by its external payment reference.
	// This is the webhook idempotency lookup.
	GetByPaymentID(ctx context.Context, paymentID string) (*model.Order, error)

	// ListByUser retrieves a user's orders, newest first.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Order, error)

	// List retrieves all orders, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Order, error)

	// UpdateStatus writes a new lifecycle status. Returns
	// model.ErrOrderNotFound if the order does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// IntentRepository defines the interface for checkout intent persistence.
type IntentRepository interface {
	// Create inserts a new checkout intent. The row is written before
	// the provider is called, so the provider reference is not yet known.
	Create(ctx context.Context, intent *model.CheckoutIntent) error

	// SetProviderRef attaches the provider's payment reference once the
	// provider call has succeeded.
	SetProviderRef(ctx context.Context, id uuid.UUID, providerRef string) error

	// GetByProviderRef retrieves an intent by the provider's payment
	// reference.
	GetByProviderRef(ctx context.Context, providerRef string) (*model.CheckoutIntent, error)

	// UpdateStatus writes a new intent status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// CartRepository defines the interface for cart staging data access.
type CartRepository interface {
	// Get retrieves a user's cart. A missing cart is returned as an
	// empty one.
	Get(ctx context.Context, userID string) (*model.Cart, error)

	// Replace overwrites the full contents of a user's cart.
	Replace(ctx context.Context, userID string, items []model.CartItem) error

	// Clear removes all items from a user's cart.
	Clear(ctx context.Context, userID string) error
}

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// GetOrCreate retrieves a user row, inserting it on first sight.
	GetOrCreate(ctx context.Context, id string) (*model.User, error)

	// SetProviderCustomerID persists the payment-provider customer
	// reference for reuse on later checkouts.
	SetProviderCustomerID(ctx context.Context, id, customerID string) error
}
