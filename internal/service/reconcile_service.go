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

// deletedProductName is recorded on order lines whose product was removed
// from the catalogue between checkout and reconciliation.
const deletedProductName = "(producto eliminado)"

// reconcileService implements ReconcileService.
type reconcileService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	intentRepo  repository.IntentRepository
	logger      zerolog.Logger
}

// NewReconcileService creates the webhook payment reconciler.
func NewReconcileService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	intentRepo repository.IntentRepository,
	logger zerolog.Logger,
) ReconcileService {
	return &reconcileService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		intentRepo:  intentRepo,
		logger:      logger.With().Str("service", "reconcile").Logger(),
	}
}

// HandleEvent materialises an order from a verified payment event.
// Returning an error makes the webhook endpoint answer 5xx so the
// provider redelivers; that is reserved for order-creation failure only.
func (s *reconcileService) HandleEvent(ctx context.Context, event *payment.VerifiedEvent) error {
	if event.Type != payment.EventPaymentSucceeded {
		s.logger.Debug().Str("type", event.Type).Msg("ignoring non-success payment event")
		return nil
	}

	// Idempotency guard: webhook delivery is at-least-once, so a second
	// delivery of the same payment must find the order and stop.
	existing, err := s.orderRepo.GetByPaymentID(ctx, event.IntentID)
	if err != nil {
		return fmt.Errorf("idempotency lookup failed: %w", err)
	}
	if existing != nil {
		s.logger.Info().
			Str("payment_id", event.IntentID).
			Str("order_id", existing.ID.String()).
			Msg("duplicate payment event, order already materialised")
		return nil
	}

	intent, err := s.loadIntent(ctx, event)
	if err != nil {
		return err
	}

	items, err := s.buildOrderItems(ctx, intent.Items)
	if err != nil {
		return err
	}

	now := time.Now()
	paymentID := event.IntentID
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        intent.UserID,
		PaymentID:     &paymentID,
		PaymentStatus: model.PaymentStatusPaid,
		Status:        model.OrderStatusPending,
		CouponCode:    intent.CouponCode,
		ItemsPrice:    intent.ItemsPrice,
		ShippingPrice: intent.ShippingPrice,
		Discount:      intent.Discount,
		TotalPrice:    intent.TotalPrice,
		Shipping:      intent.Shipping,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i := range items {
		items[i].OrderID = order.ID
	}

	// Order creation is the one step whose failure must bubble up: the
	// payment has succeeded, so the financial record has to exist, and a
	// provider retry is the recovery path.
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to materialise order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback order transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return fmt.Errorf("failed to materialise order: %w", err)
	}
	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return fmt.Errorf("failed to materialise order items: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	// Past this point the order exists and the event is acknowledged no
	// matter what: stock and coupon bookkeeping are secondary to the
	// financial record once payment has actually succeeded.
	s.debitStock(ctx, order, items)
	s.commitCoupon(ctx, order)

	if intent.ID != uuid.Nil {
		if err := s.intentRepo.UpdateStatus(ctx, intent.ID, model.IntentStatusFulfilled); err != nil {
			s.logger.Warn().Err(err).Str("intent_id", intent.ID.String()).Msg("failed to mark intent fulfilled")
		}
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_id", event.IntentID).
		Int64("total", order.TotalPrice).
		Msg("payment reconciled into order")

	return nil
}

// loadIntent resolves the pending checkout for the event: the durable
// intent row when present, otherwise the metadata that round-tripped
// through the provider.
func (s *reconcileService) loadIntent(ctx context.Context, event *payment.VerifiedEvent) (*model.CheckoutIntent, error) {
	intent, err := s.intentRepo.GetByProviderRef(ctx, event.IntentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout intent: %w", err)
	}
	if intent != nil {
		return intent, nil
	}

	s.logger.Warn().
		Str("payment_id", event.IntentID).
		Msg("no checkout intent row for payment, reconstructing from event metadata")

	return intentFromMetadata(event)
}

// intentFromMetadata rebuilds a checkout intent from the opaque metadata
// attached at intent-creation time. The metadata is authoritative; the
// user's live cart is never consulted.
func intentFromMetadata(event *payment.VerifiedEvent) (*model.CheckoutIntent, error) {
	md := event.Metadata
	if md == nil || md["userId"] == "" || md["items"] == "" {
		return nil, errors.New("payment event metadata is missing checkout details")
	}

	var items []model.IntentItem
	if err := json.Unmarshal([]byte(md["items"]), &items); err != nil {
		return nil, fmt.Errorf("failed to parse event item metadata: %w", err)
	}

	intent := &model.CheckoutIntent{
		UserID: md["userId"],
		Items:  items,
		Shipping: model.ShippingAddress{
			FullName: md["fullName"],
			Street:   md["street"],
			City:     md["city"],
			Phone:    md["phone"],
		},
		ItemsPrice:    parseAmount(md["itemsPrice"]),
		ShippingPrice: parseAmount(md["shippingPrice"]),
		Discount:      parseAmount(md["discount"]),
		TotalPrice:    parseAmount(md["totalPrice"]),
	}

	if code, ok := md["couponCode"]; ok && code != "" {
		intent.CouponCode = &code
	}

	if id, err := uuid.Parse(md["checkoutIntentId"]); err == nil {
		intent.ID = id
	}

	return intent, nil
}

// buildOrderItems re-resolves each product to capture a current display
// name. A product deleted since checkout gets a placeholder name rather
// than failing the whole reconciliation.
func (s *reconcileService) buildOrderItems(ctx context.Context, intentItems []model.IntentItem) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(intentItems))
	for _, it := range intentItems {
		name := deletedProductName

		p, err := s.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %s: %w", it.ProductID, err)
		}
		if p != nil {
			name = p.Name
		} else {
			s.logger.Warn().Str("product_id", it.ProductID).Msg("product deleted since checkout")
		}

		items = append(items, model.OrderItem{
			ID:        uuid.New(),
			ProductID: it.ProductID,
			Name:      name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return items, nil
}

// debitStock commits the stock debits for a materialised order. This is
// the only point where the card-payment path decrements inventory. A
// rejected debit is logged and skipped: the order already exists and the
// money has moved.
func (s *reconcileService) debitStock(ctx context.Context, order *model.Order, items []model.OrderItem) {
	for _, item := range items {
		_, err := s.productRepo.DebitStock(ctx, nil, item.ProductID, item.Quantity)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("stock debit failed during reconciliation")
		}
	}
}

// commitCoupon appends the user to the coupon's used-by set. Idempotent,
// so duplicate reconciliation attempts cannot double-redeem.
func (s *reconcileService) commitCoupon(ctx context.Context, order *model.Order) {
	if order.CouponCode == nil || *order.CouponCode == "" {
		return
	}

	c, err := s.couponRepo.GetByCode(ctx, *order.CouponCode)
	if err != nil || c == nil {
		s.logger.Error().
			Err(err).
			Str("code", *order.CouponCode).
			Msg("failed to resolve coupon for redemption commit")
		return
	}

	if err := s.couponRepo.MarkRedeemed(ctx, c.ID, order.UserID); err != nil {
		s.logger.Error().
			Err(err).
			Str("code", *order.CouponCode).
			Str("user_id", order.UserID).
			Msg("failed to commit coupon redemption")
	}
}

func parseAmount(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
