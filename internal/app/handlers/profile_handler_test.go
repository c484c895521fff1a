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

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetProfile(ctx context.Context) (*models.UserProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func (m *MockProfileService) SaveProfile(ctx context.Context, profile models.UserProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
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

func TestProfileHandler_GetSession(t *testing.T) {
	tests := []struct {
		name               string
		mockProfileService func() *MockProfileService
		mockRoleService    func() *MockRoleService
		wantStatusCode     int
		wantBody           string
	}{
		{
			name: "Admin With Profile",
			mockProfileService: func() *MockProfileService {
				m := &MockProfileService{}
				m.On("GetProfile", mock.Anything).
					Return(&models.UserProfile{Name: "Asha", Email: "asha@example.com"}, nil)
				return m
			},
			mockRoleService: func() *MockRoleService {
				m := &MockRoleService{}
				m.On("Role", mock.Anything).Return(models.RoleAdmin, nil)
				return m
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"role":"admin","is_admin":true,"profile":{"name":"Asha","email":"asha@example.com"}}`,
		},
		{
			name: "User Without Saved Profile",
			mockProfileService: func() *MockProfileService {
				m := &MockProfileService{}
				m.On("GetProfile", mock.Anything).Return(nil, nil)
				return m
			},
			mockRoleService: func() *MockRoleService {
				m := &MockRoleService{}
				m.On("Role", mock.Anything).Return(models.RoleUser, nil)
				return m
			},
			wantStatusCode: http.StatusOK,
			wantBody:       `{"role":"user","is_admin":false}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ph := NewProfileHandler(5, tt.mockProfileService(), tt.mockRoleService())

			r := authedRequest(http.MethodGet, "/api/panel/session", "")
			w := httptest.NewRecorder()
			ph.GetSession(w, r)

			assert.Equal(t, tt.wantStatusCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestProfileHandler_SaveProfile(t *testing.T) {
	t.Run("Valid Profile", func(t *testing.T) {
		ps := &MockProfileService{}
		ps.On("SaveProfile", mock.Anything, models.UserProfile{Name: "Asha", Email: "asha@example.com"}).
			Return(nil)
		ph := NewProfileHandler(5, ps, &MockRoleService{})

		r := authedRequest(http.MethodPut, "/api/panel/profile", `{"name":"Asha","email":"asha@example.com"}`)
		w := httptest.NewRecorder()
		ph.SaveProfile(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		ps.AssertExpectations(t)
	})

	t.Run("Malformed Body", func(t *testing.T) {
		ps := &MockProfileService{}
		ph := NewProfileHandler(5, ps, &MockRoleService{})

		r := authedRequest(http.MethodPut, "/api/panel/profile", `{not json`)
		w := httptest.NewRecorder()
		ph.SaveProfile(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		ps.AssertNumberOfCalls(t, "SaveProfile", 0)
	})
}
