package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appContext "github.com/smmboost/panel/internal/app/context"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, input service.PlaceOrderInput) (*service.PlacedOrder, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlacedOrder), args.Error(1)
}

func (m *MockOrderService) EstimateOrder(ctx context.Context, serviceID int64, quantity string) (*service.OrderEstimate, error) {
	args := m.Called(ctx, serviceID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.OrderEstimate), args.Error(1)
}

func (m *MockOrderService) GetOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderService) InvalidateOrders(principal models.Principal) {
	m.Called(principal)
}

func (m *MockOrderService) InvalidateAllOrders() {
	m.Called()
}

func authedRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := appContext.WithPrincipal(r.Context(), "principal-abc123")
	return r.WithContext(ctx)
}

func TestOrdersHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name             string
		body             string
		mockOrderService func() *MockOrderService
		wantStatusCode   int
		wantBodyContains string
	}{
		{
			name: "Successful Submission",
			body: `{"service":1,"link":"https://instagram.com/someone","quantity":500}`,
			mockOrderService: func() *MockOrderService {
				m := &MockOrderService{}
				m.On("PlaceOrder", mock.Anything, service.PlaceOrderInput{
					ServiceID: 1,
					Link:      "https://instagram.com/someone",
					Quantity:  "500",
				}).Return(&service.PlacedOrder{
					OrderID:        42,
					ServiceID:      1,
					Link:           "https://instagram.com/someone",
					Quantity:       500,
					EstimatedTotal: 125,
				}, nil)
				return m
			},
			wantStatusCode:   http.StatusCreated,
			wantBodyContains: `"order_id":42`,
		},
		{
			name: "Fractional Quantity Reaches The Coordinator As Raw Text",
			body: `{"service":1,"link":"https://instagram.com/someone","quantity":10.5}`,
			mockOrderService: func() *MockOrderService {
				m := &MockOrderService{}
				m.On("PlaceOrder", mock.Anything, service.PlaceOrderInput{
					ServiceID: 1,
					Link:      "https://instagram.com/someone",
					Quantity:  "10.5",
				}).Return(nil, appErrors.ValidationFailed(errors.New("nan"), "quantity", "quantity is not a positive whole number"))
				return m
			},
			wantStatusCode:   http.StatusUnprocessableEntity,
			wantBodyContains: "not a positive whole number",
		},
		{
			name: "Validation Error Names The Field",
			body: `{"service":1,"link":"https://instagram.com/someone","quantity":50}`,
			mockOrderService: func() *MockOrderService {
				m := &MockOrderService{}
				m.On("PlaceOrder", mock.Anything, mock.Anything).
					Return(nil, appErrors.ValidationFailed(errors.New("below min"), "quantity", "quantity below service minimum of 100"))
				return m
			},
			wantStatusCode:   http.StatusUnprocessableEntity,
			wantBodyContains: `"field":"quantity"`,
		},
		{
			name: "Concurrent Submission Rejected",
			body: `{"service":1,"link":"https://instagram.com/someone","quantity":500}`,
			mockOrderService: func() *MockOrderService {
				m := &MockOrderService{}
				m.On("PlaceOrder", mock.Anything, mock.Anything).
					Return(nil, appErrors.NewWithCode(errors.New("in flight"), "An order submission is already in progress", http.StatusConflict))
				return m
			},
			wantStatusCode:   http.StatusConflict,
			wantBodyContains: "already in progress",
		},
		{
			name: "Backend Rejection Surfaced Verbatim",
			body: `{"service":1,"link":"https://instagram.com/someone","quantity":500}`,
			mockOrderService: func() *MockOrderService {
				m := &MockOrderService{}
				m.On("PlaceOrder", mock.Anything, mock.Anything).
					Return(nil, appErrors.InsufficientBalance(errors.New("insufficient"), "insufficient balance: have 100, need 125"))
				return m
			},
			wantStatusCode:   http.StatusPaymentRequired,
			wantBodyContains: "insufficient balance: have 100, need 125",
		},
		{
			name: "Malformed Body",
			body: `{"service":`,
			mockOrderService: func() *MockOrderService {
				return &MockOrderService{}
			},
			wantStatusCode:   http.StatusBadRequest,
			wantBodyContains: "Unable to parse body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mockOrderService()
			oh := NewOrdersHandler(5, m)

			r := authedRequest(http.MethodPost, "/api/panel/orders", tt.body)
			w := httptest.NewRecorder()

			oh.CreateOrder(w, r)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBodyContains)
		})
	}
}

func TestOrdersHandler_GetOrders(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name             string
		mockOrderService func() *MockOrderService
		wantStatusCode   int
		wantBodyContains string
	}{
		{
			name: "Orders With Authoritative Totals",
			mockOrderService: func() *MockOrderService {
				m := &MockOrderService{}
				m.On("GetOrders", mock.Anything).Return([]models.Order{
					{ID: 42, ServiceID: 1, Link: "https://instagram.com/someone", Quantity: 500,
						Status: models.StatusPending, CreatedAt: createdAt, User: "principal-abc123", TotalCost: 125},
				}, nil)
				return m
			},
			wantStatusCode:   http.StatusOK,
			wantBodyContains: `"total_cost":125`,
		},
		{
			name: "No Orders",
			mockOrderService: func() *MockOrderService {
				m := &MockOrderService{}
				m.On("GetOrders", mock.Anything).Return([]models.Order{}, nil)
				return m
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "Unauthenticated",
			mockOrderService: func() *MockOrderService {
				m := &MockOrderService{}
				m.On("GetOrders", mock.Anything).
					Return(nil, appErrors.Unauthenticated(errors.New("no identity"), "Login required to list orders"))
				return m
			},
			wantStatusCode:   http.StatusUnauthorized,
			wantBodyContains: "Login required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.mockOrderService()
			oh := NewOrdersHandler(5, m)

			r := authedRequest(http.MethodGet, "/api/panel/orders", "")
			w := httptest.NewRecorder()

			oh.GetOrders(w, r)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			if tt.wantBodyContains != "" {
				assert.Contains(t, w.Body.String(), tt.wantBodyContains)
			}
		})
	}
}

func TestOrdersHandler_EstimateOrder(t *testing.T) {
	m := &MockOrderService{}
	m.On("EstimateOrder", mock.Anything, int64(1), "500").Return(&service.OrderEstimate{
		Total:      125,
		Balance:    100,
		Sufficient: false,
	}, nil)

	oh := NewOrdersHandler(5, m)
	r := authedRequest(http.MethodGet, "/api/panel/orders/estimate?service=1&quantity=500", "")
	w := httptest.NewRecorder()

	oh.EstimateOrder(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":125,"balance":100,"sufficient":false}`, w.Body.String())
}

func TestOrdersHandler_EstimateOrder_BadServiceID(t *testing.T) {
	m := &MockOrderService{}
	oh := NewOrdersHandler(5, m)

	r := authedRequest(http.MethodGet, "/api/panel/orders/estimate?service=abc&quantity=500", "")
	w := httptest.NewRecorder()

	oh.EstimateOrder(w, r)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	m.AssertNotCalled(t, "EstimateOrder")
}
