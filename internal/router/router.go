package router

import (
	"net/http"
	"strings"

	"tienda/internal/auth"
	"tienda/internal/handler"
	"tienda/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers bundles the HTTP handlers the router wires up.
type Handlers struct {
	Product  *handler.ProductHandler
	Coupon   *handler.CouponHandler
	Order    *handler.OrderHandler
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
	Cart     *handler.CartHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, tokens *auth.TokenStrategy, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	admin := middleware.RequireAdmin(logger)

	// Health check endpoint (no authentication required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Product routes: reads are open to any authenticated user, writes
	// are admin only.
	productRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		hasID := r.URL.Path != "/api/products" && r.URL.Path != "/api/products/"

		switch {
		case r.Method == http.MethodGet && hasID:
			h.Product.GetByID(w, r)
		case r.Method == http.MethodGet:
			h.Product.GetAll(w, r)
		case r.Method == http.MethodPost && !hasID:
			admin(http.HandlerFunc(h.Product.Create)).ServeHTTP(w, r)
		case r.Method == http.MethodPut && hasID:
			admin(http.HandlerFunc(h.Product.Update)).ServeHTTP(w, r)
		case r.Method == http.MethodDelete && hasID:
			admin(http.HandlerFunc(h.Product.Delete)).ServeHTTP(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
	mux.HandleFunc("/api/products", productRouteHandler)
	mux.HandleFunc("/api/products/", productRouteHandler)

	// Coupon routes: validation is a user-facing read, the rest is admin
	// management.
	couponRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/coupons/validate":
			h.Coupon.Validate(w, r)
		case r.Method == http.MethodPost && r.URL.Path == "/api/coupons/import":
			admin(http.HandlerFunc(h.Coupon.Import)).ServeHTTP(w, r)
		case r.Method == http.MethodPost && (r.URL.Path == "/api/coupons" || r.URL.Path == "/api/coupons/"):
			admin(http.HandlerFunc(h.Coupon.Create)).ServeHTTP(w, r)
		case r.Method == http.MethodGet && (r.URL.Path == "/api/coupons" || r.URL.Path == "/api/coupons/"):
			admin(http.HandlerFunc(h.Coupon.GetAll)).ServeHTTP(w, r)
		case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/api/coupons/"):
			admin(http.HandlerFunc(h.Coupon.Patch)).ServeHTTP(w, r)
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/coupons/"):
			admin(http.HandlerFunc(h.Coupon.Delete)).ServeHTTP(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.HandleFunc("/api/coupons", couponRouteHandler)
	mux.HandleFunc("/api/coupons/", couponRouteHandler)

	// Order routes.
	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && (r.URL.Path == "/api/orders" || r.URL.Path == "/api/orders/"):
			h.Order.Create(w, r)
		case r.Method == http.MethodGet && r.URL.Path == "/api/orders/mine":
			h.Order.ListMine(w, r)
		case r.Method == http.MethodGet && (r.URL.Path == "/api/orders" || r.URL.Path == "/api/orders/"):
			admin(http.HandlerFunc(h.Order.List)).ServeHTTP(w, r)
		case r.Method == http.MethodPatch && strings.HasSuffix(r.URL.Path, "/status"):
			admin(http.HandlerFunc(h.Order.UpdateStatus)).ServeHTTP(w, r)
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/orders/"):
			h.Order.GetByID(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Checkout intent creation.
	mux.HandleFunc("/api/payment/create-intent", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.Checkout.CreateIntent(w, r)
	})

	// Payment provider webhook: authenticated by payload signature, not
	// by bearer token.
	mux.HandleFunc("/api/webhooks/payment", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.Webhook.HandlePayment(w, r)
	})

	// Cart staging.
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.Cart.Get(w, r)
		case http.MethodPut:
			h.Cart.Replace(w, r)
		case http.MethodDelete:
			h.Cart.Clear(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Apply middleware in order: Recovery -> Logging -> CORS -> BearerAuth
	var root http.Handler = mux
	root = middleware.BearerAuth(tokens, logger)(root)
	root = middleware.CORS(root)
	root = middleware.Logging(logger)(root)
	root = middleware.Recovery(logger)(root)

	return root
}
