package middlware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	appContext "github.com/smmboost/panel/internal/app/context"
	appErrors "github.com/smmboost/panel/internal/app/errors"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GetPrincipal(tokenString string) (models.Principal, error) {
	args := m.Called(tokenString)
	return args.Get(0).(models.Principal), args.Error(1)
}

func (m *MockTokenService) GenerateToken(principal models.Principal) (string, error) {
	args := m.Called(principal)
	return args.String(0), args.Error(1)
}

type MockRoleService struct {
	mock.Mock
}

func (m *MockRoleService) Role(ctx context.Context) (models.UserRole, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.UserRole), args.Error(1)
}

func (m *MockRoleService) IsAdmin(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func TestAuthMiddleware_Identify(t *testing.T) {
	tests := []struct {
		name             string
		authHeader       string
		mockTokenService func() *MockTokenService
		wantPrincipal    models.Principal
		wantStatusCode   int
	}{
		{
			name:       "Valid Token",
			authHeader: "Bearer good-token",
			mockTokenService: func() *MockTokenService {
				m := &MockTokenService{}
				m.On("GetPrincipal", "good-token").Return(models.Principal("principal-abc123"), nil)
				return m
			},
			wantPrincipal:  "principal-abc123",
			wantStatusCode: http.StatusOK,
		},
		{
			name:       "No Token Passes Through Anonymously",
			authHeader: "",
			mockTokenService: func() *MockTokenService {
				return &MockTokenService{}
			},
			wantPrincipal:  "",
			wantStatusCode: http.StatusOK,
		},
		{
			name:       "Invalid Token Rejected",
			authHeader: "Bearer bad-token",
			mockTokenService: func() *MockTokenService {
				m := &MockTokenService{}
				m.On("GetPrincipal", "bad-token").
					Return(models.Principal(""), appErrors.Unauthenticated(errors.New("bad"), "Invalid token"))
				return m
			},
			wantStatusCode: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			am := NewAuthMiddleware(tt.mockTokenService(), &MockRoleService{})

			var gotPrincipal models.Principal
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPrincipal = appContext.GetPrincipal(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/api/panel/balance", nil)
			if tt.authHeader != "" {
				r.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			am.Identify(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			if tt.wantStatusCode == http.StatusOK {
				assert.Equal(t, tt.wantPrincipal, gotPrincipal)
			}
		})
	}
}

func TestAuthMiddleware_RequireAuth(t *testing.T) {
	am := NewAuthMiddleware(&MockTokenService{}, &MockRoleService{})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/panel/balance", nil)
	w := httptest.NewRecorder()
	am.RequireAuth(next).ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/api/panel/balance", nil)
	r = r.WithContext(appContext.WithPrincipal(r.Context(), "principal-abc123"))
	w = httptest.NewRecorder()
	am.RequireAuth(next).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rs := &MockRoleService{}
	rs.On("IsAdmin", mock.Anything).Return(false, nil)
	am := NewAuthMiddleware(&MockTokenService{}, rs)

	r := httptest.NewRequest(http.MethodPost, "/api/panel/admin/balance", nil)
	r = r.WithContext(appContext.WithPrincipal(r.Context(), "principal-abc123"))
	w := httptest.NewRecorder()
	am.RequireAdmin(next).ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	rs = &MockRoleService{}
	rs.On("IsAdmin", mock.Anything).Return(true, nil)
	am = NewAuthMiddleware(&MockTokenService{}, rs)

	w = httptest.NewRecorder()
	am.RequireAdmin(next).ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}
