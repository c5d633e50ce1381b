package service

import (
	"context"
	"fmt"
	"time"

	"tienda/internal/model"
	"tienda/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// statusTransitions is the linear order lifecycle. There is no path
// backwards and no cancellation state.
var statusTransitions = map[string]string{
	model.OrderStatusPending: model.OrderStatusPaid,
	model.OrderStatusPaid:    model.OrderStatusDelivered,
}

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	coupons     CouponService
	shippingFee int64
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	coupons CouponService,
	shippingFee int64,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		coupons:     coupons,
		shippingFee: shippingFee,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateDirect creates an order synchronously for non-card payment
// methods. Unlike the card path there is no intent stage: validation,
// order creation and stock debit happen in one transaction, so a stock
// shortfall fails the whole request with nothing committed.
func (s *orderService) CreateDirect(ctx context.Context, userID string, req *model.CreateOrderRequest) (*model.OrderResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	items, subtotal, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var discount int64
	var couponCode *string
	var couponID uuid.UUID
	if req.CouponCode != nil && *req.CouponCode != "" {
		d, c, err := s.coupons.Validate(ctx, *req.CouponCode, userID, subtotal)
		if err != nil {
			s.logger.Warn().Str("code", *req.CouponCode).Err(err).Msg("coupon rejected on direct order")
			return nil, err
		}
		discount = d
		couponCode = &c.Code
		couponID = c.ID
	}

	total := subtotal + s.shippingFee - discount

	// The submitted total is display data only; the server-computed one
	// decides. A mismatch means a stale client or a tampered request.
	if req.TotalPrice != total {
		s.logger.Warn().
			Int64("submitted", req.TotalPrice).
			Int64("computed", total).
			Msg("direct order total mismatch")
		return nil, model.ErrTotalMismatch
	}

	now := time.Now()
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        userID,
		PaymentStatus: model.PaymentStatusPending,
		Status:        model.OrderStatusPending,
		CouponCode:    couponCode,
		ItemsPrice:    subtotal,
		ShippingPrice: s.shippingFee,
		Discount:      discount,
		TotalPrice:    total,
		Shipping:      req.Shipping,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i := range items {
		items[i].OrderID = order.ID
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	for _, item := range items {
		if _, err = s.productRepo.DebitStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			s.logger.Warn().
				Err(err).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("stock debit failed on direct order")
			return nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Both terminal paths converge on the same materialisation contract,
	// so the direct path commits coupon usage exactly like the
	// reconciler does.
	if couponCode != nil {
		if err := s.couponRepo.MarkRedeemed(ctx, couponID, userID); err != nil {
			s.logger.Error().
				Err(err).
				Str("code", *couponCode).
				Str("user_id", userID).
				Msg("failed to commit coupon redemption on direct order")
		}
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID).
		Int64("total", total).
		Msg("direct order created")

	return &model.OrderResponse{Order: order, Items: items}, nil
}

// GetByID retrieves an order with its items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		return nil, nil
	}

	return &model.OrderResponse{Order: order, Items: items}, nil
}

// ListByUser retrieves a user's orders.
func (s *orderService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Order, error) {
	limit, offset = clampPage(limit, offset)
	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list user orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// List retrieves all orders.
func (s *orderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	limit, offset = clampPage(limit, offset)
	orders, err := s.orderRepo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus applies an admin lifecycle transition.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	order, _, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if statusTransitions[order.Status] != status {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", order.Status).
			Str("to", status).
			Msg("rejected order status transition")
		return nil, model.ErrInvalidTransition
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	order.Status = status
	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", status).
		Msg("order status updated")

	return order, nil
}

// priceItems resolves products and accumulates the subtotal from
// catalogue prices, mirroring the checkout pre-flight checks.
func (s *orderService) priceItems(ctx context.Context, reqItems []model.OrderItemRequest) ([]model.OrderItem, int64, error) {
	items := make([]model.OrderItem, 0, len(reqItems))
	var subtotal int64

	for _, item := range reqItems {
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

		items = append(items, model.OrderItem{
			ID:        uuid.New(),
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  item.Quantity,
		})
		subtotal += p.Price * int64(item.Quantity)
	}

	return items, subtotal, nil
}

// validateCreateRequest validates the direct order payload.
func (s *orderService) validateCreateRequest(req *model.CreateOrderRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "order request is required")
	}

	if len(req.Items) == 0 {
		return model.NewDomainError(model.ErrCodeValidation, "order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return model.NewDomainError(model.ErrCodeValidation,
				fmt.Sprintf("item %d: product ID is required", i))
		}
		if item.Quantity < 1 {
			return model.ErrInvalidQuantity
		}
	}

	return validateShippingAddress(&req.Shipping)
}

// clampPage applies the shared pagination bounds.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
