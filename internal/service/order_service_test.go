package service

import (
	"context"
	"testing"

	"tienda/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newOrderFixture() (*MockOrderRepository, *MockProductRepository, *MockCouponRepository, *MockCouponService, OrderService) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	couponRepo := new(MockCouponRepository)
	coupons := new(MockCouponService)

	svc := NewOrderService(orderRepo, productRepo, couponRepo, coupons, 10000, zerolog.Nop())
	return orderRepo, productRepo, couponRepo, coupons, svc
}

func TestOrderService_CreateDirect_DebitsStockInTransaction(t *testing.T) {
	ctx := context.Background()
	orderRepo, productRepo, _, _, svc := newOrderFixture()
	tx := new(MockTx)

	productRepo.On("GetByID", ctx, "P001").Return(&model.Product{
		ID: "P001", Name: "Camiseta", Price: 5000, Available: 5,
	}, nil)

	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("CreateOrder", ctx, tx, mock.AnythingOfType("*model.Order")).Return(nil)
	orderRepo.On("CreateOrderItems", ctx, tx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	productRepo.On("DebitStock", ctx, tx, "P001", 3).Return(2, nil)
	tx.On("Commit", ctx).Return(nil)

	resp, err := svc.CreateDirect(ctx, "user-1", &model.CreateOrderRequest{
		Items:         []model.OrderItemRequest{{ProductID: "P001", Quantity: 3}},
		Shipping:      testShipping,
		PaymentMethod: "efectivo",
		TotalPrice:    25000, // 3*5000 + 10000 shipping
	})

	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, resp.Order.PaymentStatus)
	assert.Equal(t, model.OrderStatusPending, resp.Order.Status)
	assert.Equal(t, int64(25000), resp.Order.TotalPrice)
	assert.Nil(t, resp.Order.PaymentID)

	orderRepo.AssertExpectations(t)
	productRepo.AssertExpectations(t)
	assert.True(t, tx.committed)
}

func TestOrderService_CreateDirect_TotalMismatch(t *testing.T) {
	ctx := context.Background()
	orderRepo, productRepo, _, _, svc := newOrderFixture()

	productRepo.On("GetByID", ctx, "P001").Return(&model.Product{
		ID: "P001", Name: "Camiseta", Price: 5000, Available: 5,
	}, nil)

	_, err := svc.CreateDirect(ctx, "user-1", &model.CreateOrderRequest{
		Items:      []model.OrderItemRequest{{ProductID: "P001", Quantity: 1}},
		Shipping:   testShipping,
		TotalPrice: 1, // server computes 15000
	})

	assert.ErrorIs(t, err, model.ErrTotalMismatch)
	orderRepo.AssertNotCalled(t, "BeginTx")
}

func TestOrderService_CreateDirect_StockShortfallRollsBack(t *testing.T) {
	ctx := context.Background()
	orderRepo, productRepo, _, _, svc := newOrderFixture()
	tx := new(MockTx)

	// Pre-flight sees enough stock, the conditional debit loses the race.
	productRepo.On("GetByID", ctx, "P001").Return(&model.Product{
		ID: "P001", Name: "Camiseta", Price: 5000, Available: 1,
	}, nil)

	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("CreateOrder", ctx, tx, mock.AnythingOfType("*model.Order")).Return(nil)
	orderRepo.On("CreateOrderItems", ctx, tx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	productRepo.On("DebitStock", ctx, tx, "P001", 1).Return(0, model.ErrInsufficientStock)
	tx.On("Rollback", ctx).Return(nil)

	_, err := svc.CreateDirect(ctx, "user-1", &model.CreateOrderRequest{
		Items:      []model.OrderItemRequest{{ProductID: "P001", Quantity: 1}},
		Shipping:   testShipping,
		TotalPrice: 15000,
	})

	assert.ErrorIs(t, err, model.ErrInsufficientStock)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}

func TestOrderService_CreateDirect_RedeemsCouponAfterCommit(t *testing.T) {
	ctx := context.Background()
	orderRepo, productRepo, couponRepo, coupons, svc := newOrderFixture()
	tx := new(MockTx)

	couponID := uuid.New()
	code := "BIENVENIDO10"

	productRepo.On("GetByID", ctx, "P001").Return(&model.Product{
		ID: "P001", Name: "Camiseta", Price: 20000, Available: 5,
	}, nil)
	coupons.On("Validate", ctx, code, "user-1", int64(20000)).
		Return(int64(2000), &model.Coupon{ID: couponID, Code: code, Kind: model.CouponKindPercentage, Value: 10}, nil)

	orderRepo.On("BeginTx", ctx).Return(tx, nil)
	orderRepo.On("CreateOrder", ctx, tx, mock.AnythingOfType("*model.Order")).Return(nil)
	orderRepo.On("CreateOrderItems", ctx, tx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	productRepo.On("DebitStock", ctx, tx, "P001", 1).Return(4, nil)
	tx.On("Commit", ctx).Return(nil)
	couponRepo.On("MarkRedeemed", ctx, couponID, "user-1").Return(nil)

	resp, err := svc.CreateDirect(ctx, "user-1", &model.CreateOrderRequest{
		Items:      []model.OrderItemRequest{{ProductID: "P001", Quantity: 1}},
		Shipping:   testShipping,
		CouponCode: &code,
		TotalPrice: 28000, // 20000 - 2000 + 10000
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2000), resp.Order.Discount)
	couponRepo.AssertExpectations(t)
}

func TestOrderService_CreateDirect_RejectsInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	orderRepo, _, _, _, svc := newOrderFixture()

	_, err := svc.CreateDirect(ctx, "user-1", &model.CreateOrderRequest{
		Items:    []model.OrderItemRequest{{ProductID: "P001", Quantity: 0}},
		Shipping: testShipping,
	})

	assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	orderRepo.AssertNotCalled(t, "BeginTx")
}

func TestOrderService_UpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to paid", model.OrderStatusPending, model.OrderStatusPaid, true},
		{"paid to delivered", model.OrderStatusPaid, model.OrderStatusDelivered, true},
		{"pending to delivered skips a step", model.OrderStatusPending, model.OrderStatusDelivered, false},
		{"delivered is terminal", model.OrderStatusDelivered, model.OrderStatusPending, false},
		{"no going back", model.OrderStatusPaid, model.OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			orderRepo, _, _, _, svc := newOrderFixture()
			id := uuid.New()

			orderRepo.On("GetByID", ctx, id).Return(&model.Order{ID: id, Status: tt.from}, []model.OrderItem{}, nil)
			if tt.allowed {
				orderRepo.On("UpdateStatus", ctx, id, tt.to).Return(nil)
			}

			order, err := svc.UpdateStatus(ctx, id, tt.to)

			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, order.Status)
			} else {
				assert.ErrorIs(t, err, model.ErrInvalidTransition)
				orderRepo.AssertNotCalled(t, "UpdateStatus")
			}
		})
	}
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	ctx := context.Background()
	orderRepo, _, _, _, svc := newOrderFixture()
	id := uuid.New()

	orderRepo.On("GetByID", ctx, id).Return(nil, nil, nil)

	_, err := svc.UpdateStatus(ctx, id, model.OrderStatusPaid)

	assert.ErrorIs(t, err, model.ErrOrderNotFound)
}
