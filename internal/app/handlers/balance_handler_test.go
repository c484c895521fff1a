package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smmboost/panel/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) GetBalance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBalanceService) Invalidate(principal models.Principal) {
	m.Called(principal)
}

type MockTopUpService struct {
	mock.Mock
}

func (m *MockTopUpService) InitiateTopUp(ctx context.Context, amount int64, redirectURL string) error {
	args := m.Called(ctx, amount, redirectURL)
	return args.Error(0)
}

func TestBalanceHandler_GetBalance(t *testing.T) {
	m := &MockBalanceService{}
	m.On("GetBalance", mock.Anything).Return(int64(1500), nil)

	bh := NewBalanceHandler(5, m, &MockTopUpService{})
	r := authedRequest(http.MethodGet, "/api/panel/balance", "")
	w := httptest.NewRecorder()

	bh.GetBalance(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balance":1500}`, w.Body.String())
}

func TestBalanceHandler_InitiateTopUp(t *testing.T) {
	tests := []struct {
		name             string
		body             string
		mockTopUpService func() *MockTopUpService
		wantStatusCode   int
	}{
		{
			name: "Accepted",
			body: `{"amount":50000,"redirect_url":"https://pay.example.com/upi/return"}`,
			mockTopUpService: func() *MockTopUpService {
				m := &MockTopUpService{}
				m.On("InitiateTopUp", mock.Anything, int64(50000), "https://pay.example.com/upi/return").Return(nil)
				return m
			},
			wantStatusCode: http.StatusAccepted,
		},
		{
			name: "Malformed Body",
			body: `{"amount":`,
			mockTopUpService: func() *MockTopUpService {
				return &MockTopUpService{}
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bh := NewBalanceHandler(5, &MockBalanceService{}, tt.mockTopUpService())
			r := authedRequest(http.MethodPost, "/api/panel/topup", tt.body)
			w := httptest.NewRecorder()

			bh.InitiateTopUp(w, r)

			assert.Equal(t, tt.wantStatusCode, w.Code)
		})
	}
}
