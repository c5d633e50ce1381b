package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tienda/internal/model"
	"tienda/internal/payment"
	"tienda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	productRepo repository.ProductRepository
	intentRepo  repository.IntentRepository
	userRepo    repository.UserRepository
	coupons     CouponService
	provider    payment.Client
	shippingFee int64
	minCharge   int64
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout intent builder.
func NewCheckoutService(
	productRepo repository.ProductRepository,
	intentRepo repository.IntentRepository,
	userRepo repository.UserRepository,
	coupons CouponService,
	provider payment.Client,
	shippingFee int64,
	minCharge int64,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		productRepo: productRepo,
		intentRepo:  intentRepo,
		userRepo:    userRepo,
		coupons:     coupons,
		provider:    provider,
		shippingFee: shippingFee,
		minCharge:   minCharge,
		logger:      logger.With().Str("service", "checkout").Logger(),
	}
}

// BuildIntent validates the proposed purchase and requests a provider
// payment intent. Every check short-circuits before any write; the only
// side effects are the checkout intent row and, possibly, a new provider
// customer reference on the user.
func (s *checkoutService) BuildIntent(ctx context.Context, userID string, req *model.CreateIntentRequest) (*model.CreateIntentResponse, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, model.NewDomainError(model.ErrCodeValidation, "checkout must contain at least one item")
	}

	if err := validateShippingAddress(&req.Shipping); err != nil {
		return nil, err
	}

	// Price every line from the live catalogue. Client-supplied prices
	// are ignored: the storefront is outside the trust boundary.
	items, subtotal, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var discount int64
	var couponCode *string
	if req.CouponCode != nil && *req.CouponCode != "" {
		// A bad coupon aborts the whole checkout rather than silently
		// charging full price.
		d, c, err := s.coupons.Validate(ctx, *req.CouponCode, userID, subtotal)
		if err != nil {
			s.logger.Warn().Str("code", *req.CouponCode).Err(err).Msg("coupon rejected at checkout")
			return nil, err
		}
		discount = d
		couponCode = &c.Code
	}

	total := subtotal + s.shippingFee - discount
	if total <= 0 || total < s.minCharge {
		s.logger.Warn().
			Int64("total", total).
			Int64("min_charge", s.minCharge).
			Msg("checkout total below minimum payable amount")
		return nil, model.ErrAmountTooSmall
	}

	customerID, err := s.resolveCustomer(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Persist the pending checkout before calling the provider so the
	// reconciler has a durable record even if this request dies between
	// the two steps.
	now := time.Now()
	intent := &model.CheckoutIntent{
		ID:            uuid.New(),
		UserID:        userID,
		Items:         items,
		Shipping:      req.Shipping,
		CouponCode:    couponCode,
		ItemsPrice:    subtotal,
		ShippingPrice: s.shippingFee,
		Discount:      discount,
		TotalPrice:    total,
		Status:        model.IntentStatusCreated,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.intentRepo.Create(ctx, intent); err != nil {
		return nil, fmt.Errorf("failed to persist checkout intent: %w", err)
	}

	providerIntent, err := s.provider.CreateIntent(ctx, payment.CreateIntentParams{
		Amount:     total,
		Currency:   "cop",
		CustomerID: customerID,
		Metadata:   intentMetadata(intent),
	})
	if err != nil {
		s.logger.Error().Err(err).Str("intent_id", intent.ID.String()).Msg("provider intent creation failed")
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.intentRepo.SetProviderRef(ctx, intent.ID, providerIntent.ID); err != nil {
		// The metadata carries enough to reconcile by itself; losing the
		// back-reference is recoverable, so log and continue.
		s.logger.Error().
			Err(err).
			Str("intent_id", intent.ID.String()).
			Str("provider_ref", providerIntent.ID).
			Msg("failed to attach provider ref to checkout intent")
	}

	s.logger.Info().
		Str("intent_id", intent.ID.String()).
		Str("provider_ref", providerIntent.ID).
		Int64("total", total).
		Msg("checkout intent created")

	return &model.CreateIntentResponse{
		ClientSecret:    providerIntent.ClientSecret,
		PaymentIntentID: providerIntent.ID,
	}, nil
}

// priceItems resolves every requested product, checks stock availability
// (pre-flight only, no debit) and accumulates the subtotal from catalogue
// prices.
func (s *checkoutService) priceItems(ctx context.Context, reqItems []model.OrderItemRequest) ([]model.IntentItem, int64, error) {
	items := make([]model.IntentItem, 0, len(reqItems))
	var subtotal int64

	for i, item := range reqItems {
		if item.ProductID == "" {
			return nil, 0, model.NewDomainError(model.ErrCodeValidation,
				fmt.Sprintf("item %d: product ID is required", i))
		}
		if item.Quantity < 1 {
			return nil, 0, model.ErrInvalidQuantity
		}

		p, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to look up product: %w", err)
		}
		if p == nil {
			return nil, 0, model.NewDomainError(model.ErrCodeProductNotFound,
				fmt.Sprintf("product %s not found", item.ProductID))
		}
		if p.Available < item.Quantity {
			return nil, 0, model.NewDomainError(model.ErrCodeInsufficientStock,
				fmt.Sprintf("insufficient stock for %s", p.Name))
		}

		items = append(items, model.IntentItem{
			ProductID: p.ID,
			Price:     p.Price,
			Quantity:  item.Quantity,
		})
		subtotal += p.Price * int64(item.Quantity)
	}

	return items, subtotal, nil
}

// resolveCustomer reuses the stored provider customer reference when it is
// still valid upstream, creating and persisting a new one otherwise.
func (s *checkoutService) resolveCustomer(ctx context.Context, userID string) (string, error) {
	user, err := s.userRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve user: %w", err)
	}

	if user.ProviderCustomerID != nil && *user.ProviderCustomerID != "" {
		_, err := s.provider.GetCustomer(ctx, *user.ProviderCustomerID)
		if err == nil {
			return *user.ProviderCustomerID, nil
		}
		if !errors.Is(err, payment.ErrCustomerNotFound) {
			return "", fmt.Errorf("failed to verify provider customer: %w", err)
		}
		s.logger.Warn().
			Str("user_id", userID).
			Str("customer_id", *user.ProviderCustomerID).
			Msg("stored provider customer no longer exists, creating a new one")
	}

	customer, err := s.provider.CreateCustomer(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to create provider customer: %w", err)
	}

	if err := s.userRepo.SetProviderCustomerID(ctx, userID, customer.ID); err != nil {
		return "", fmt.Errorf("failed to persist provider customer: %w", err)
	}

	return customer.ID, nil
}

// intentMetadata flattens the validated checkout into provider metadata.
// This payload round-trips through the provider and is the reconciler's
// fallback when the intent row cannot be found.
func intentMetadata(intent *model.CheckoutIntent) map[string]string {
	items, _ := json.Marshal(intent.Items)

	md := map[string]string{
		"checkoutIntentId": intent.ID.String(),
		"userId":           intent.UserID,
		"items":            string(items),
		"fullName":         intent.Shipping.FullName,
		"street":           intent.Shipping.Street,
		"city":             intent.Shipping.City,
		"phone":            intent.Shipping.Phone,
		"itemsPrice":       strconv.FormatInt(intent.ItemsPrice, 10),
		"shippingPrice":    strconv.FormatInt(intent.ShippingPrice, 10),
		"discount":         strconv.FormatInt(intent.Discount, 10),
		"totalPrice":       strconv.FormatInt(intent.TotalPrice, 10),
	}
	if intent.CouponCode != nil {
		md["couponCode"] = *intent.CouponCode
	}
	return md
}

// validateShippingAddress checks the required delivery fields.
func validateShippingAddress(a *model.ShippingAddress) error {
	switch {
	case a.FullName == "":
		return model.NewDomainError(model.ErrCodeValidation, "shipping full name is required")
	case a.Street == "":
		return model.NewDomainError(model.ErrCodeValidation, "shipping street is required")
	case a.City == "":
		return model.NewDomainError(model.ErrCodeValidation, "shipping city is required")
	case a.Phone == "":
		return model.NewDomainError(model.ErrCodeValidation, "shipping phone is required")
	}
	return nil
}
