package service

import (
	"context"
	"testing"

	"github.com/smmboost/panel/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRoleService_GuestWithoutIdentity(t *testing.T) {
	m := &MockPanelBackendClient{}
	rs := NewRoleService(testConfig(), m)

	role, err := rs.Role(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoleGuest, role)
	m.AssertNotCalled(t, "GetCallerUserRole")
}

func TestRoleService_CachesProbe(t *testing.T) {
	m := &MockPanelBackendClient{}
	m.On("GetCallerUserRole", mock.Anything).Return(models.RoleAdmin, nil).Once()

	rs := NewRoleService(testConfig(), m)

	isAdmin, err := rs.IsAdmin(authedCtx())
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = rs.IsAdmin(authedCtx())
	require.NoError(t, err)
	assert.True(t, isAdmin)
	m.AssertNumberOfCalls(t, "GetCallerUserRole", 1)
}
