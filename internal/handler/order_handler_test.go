package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tienda/internal/auth"
	"tienda/internal/middleware"
	"tienda/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateDirect(ctx context.Context, userID string, req *model.CreateOrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func authedRequest(method, target string, body []byte, p auth.Principal) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	return req.WithContext(middleware.ContextWithPrincipal(req.Context(), p))
}

func TestOrderHandler_Create(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	orderID := uuid.New()
	svc.On("CreateDirect", mock.Anything, "user-1", mock.AnythingOfType("*model.CreateOrderRequest")).
		Return(&model.OrderResponse{Order: &model.Order{ID: orderID, UserID: "user-1", TotalPrice: 25000}}, nil)

	body, _ := json.Marshal(model.CreateOrderRequest{
		Items:      []model.OrderItemRequest{{ProductID: "P001", Quantity: 3}},
		TotalPrice: 25000,
	})
	req := authedRequest(http.MethodPost, "/api/orders", body, auth.Principal{UserID: "user-1"})
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp model.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, orderID, resp.Order.ID)
}

func TestOrderHandler_Create_DomainErrorMapsToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient stock", model.ErrInsufficientStock, http.StatusConflict},
		{"total mismatch", model.ErrTotalMismatch, http.StatusBadRequest},
		{"coupon used", model.ErrCouponUsed, http.StatusConflict},
		{"unexpected error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			h := NewOrderHandler(svc, zerolog.Nop())

			svc.On("CreateDirect", mock.Anything, "user-1", mock.Anything).Return(nil, tt.err)

			body, _ := json.Marshal(model.CreateOrderRequest{
				Items: []model.OrderItemRequest{{ProductID: "P001", Quantity: 1}},
			})
			req := authedRequest(http.MethodPost, "/api/orders", body, auth.Principal{UserID: "user-1"})
			w := httptest.NewRecorder()

			h.Create(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestOrderHandler_Create_Unauthenticated(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "CreateDirect")
}

func TestOrderHandler_GetByID_OwnerOnly(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	orderID := uuid.New()
	svc.On("GetByID", mock.Anything, orderID).
		Return(&model.OrderResponse{Order: &model.Order{ID: orderID, UserID: "owner"}}, nil)

	req := authedRequest(http.MethodGet, "/api/orders/"+orderID.String(), nil, auth.Principal{UserID: "someone-else"})
	w := httptest.NewRecorder()

	h.GetByID(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestOrderHandler_GetByID_AdminCanReadAny(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	orderID := uuid.New()
	svc.On("GetByID", mock.Anything, orderID).
		Return(&model.OrderResponse{Order: &model.Order{ID: orderID, UserID: "owner"}}, nil)

	req := authedRequest(http.MethodGet, "/api/orders/"+orderID.String(), nil, auth.Principal{UserID: "admin-1", IsAdmin: true})
	w := httptest.NewRecorder()

	h.GetByID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderHandler_GetByID_InvalidID(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	req := authedRequest(http.MethodGet, "/api/orders/not-a-uuid", nil, auth.Principal{UserID: "user-1"})
	w := httptest.NewRecorder()

	h.GetByID(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetByID")
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	orderID := uuid.New()
	svc.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusPaid).
		Return(&model.Order{ID: orderID, Status: model.OrderStatusPaid}, nil)

	body, _ := json.Marshal(model.UpdateOrderStatusRequest{Status: model.OrderStatusPaid})
	req := authedRequest(http.MethodPatch, "/api/orders/"+orderID.String()+"/status", body,
		auth.Principal{UserID: "admin-1", IsAdmin: true})
	w := httptest.NewRecorder()

	h.UpdateStatus(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOrderHandler_UpdateStatus_InvalidTransition(t *testing.T) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc, zerolog.Nop())

	orderID := uuid.New()
	svc.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusDelivered).
		Return(nil, model.ErrInvalidTransition)

	body, _ := json.Marshal(model.UpdateOrderStatusRequest{Status: model.OrderStatusDelivered})
	req := authedRequest(http.MethodPatch, "/api/orders/"+orderID.String()+"/status", body,
		auth.Principal{UserID: "admin-1", IsAdmin: true})
	w := httptest.NewRecorder()

	h.UpdateStatus(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
