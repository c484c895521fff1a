package service

import (
	"context"
	"testing"

	appContext "github.com/smmboost/panel/internal/app/context"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPrincipal = models.Principal("principal-abc123")

func authedCtx() context.Context {
	return appContext.WithPrincipal(context.Background(), testPrincipal)
}

func TestBalanceService_UnauthenticatedReadsZero(t *testing.T) {
	m := &MockPanelBackendClient{}
	bs := NewBalanceService(testConfig(), m)

	balance, err := bs.GetBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
	// The zero is a rendering convenience, not a fetched value.
	m.AssertNotCalled(t, "GetBalance")
}

func TestBalanceService_CachesSnapshot(t *testing.T) {
	m := &MockPanelBackendClient{}
	m.On("GetBalance", mock.Anything).Return(int64(1500), nil).Once()

	bs := NewBalanceService(testConfig(), m)

	first, err := bs.GetBalance(authedCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), first)

	second, err := bs.GetBalance(authedCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), second)
	m.AssertNumberOfCalls(t, "GetBalance", 1)
}

func TestBalanceService_InvalidateTriggersFreshFetch(t *testing.T) {
	m := &MockPanelBackendClient{}
	m.On("GetBalance", mock.Anything).Return(int64(1500), nil).Once()
	m.On("GetBalance", mock.Anything).Return(int64(1375), nil).Once()

	bs := NewBalanceService(testConfig(), m)

	balance, err := bs.GetBalance(authedCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(1500), balance)

	bs.Invalidate(testPrincipal)

	balance, err = bs.GetBalance(authedCtx())
	require.NoError(t, err)
	assert.Equal(t, int64(1375), balance, "post-invalidation read must be the authoritative value")
	m.AssertNumberOfCalls(t, "GetBalance", 2)
}

func TestBalanceService_LateFetchAfterInvalidationIsDiscarded(t *testing.T) {
	m := &MockPanelBackendClient{}
	bs := NewBalanceService(testConfig(), m)

	key := testPrincipal.String()
	gen := bs.cache.generation(key)
	bs.Invalidate(testPrincipal)

	applied := bs.cache.put(key, gen, int64(9999))
	assert.False(t, applied)
	_, found := bs.cache.Get(key)
	assert.False(t, found)
}
