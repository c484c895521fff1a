package service

import (
	"context"

	"github.com/smmboost/panel/internal/app/config"
	appContext "github.com/smmboost/panel/internal/app/context"
	"github.com/smmboost/panel/internal/app/logger"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service/clients"
	"go.uber.org/zap"
)

type (
	// BalanceService holds a per-principal snapshot of the server-held
	// balance. The snapshot is advisory: the backend is the sole enforcer of
	// sufficient funds, and server-side approval of a top-up happens outside
	// the gateway's sight, so a short TTL plus explicit invalidation after
	// the caller's own mutations is the whole consistency mechanism.
	BalanceService interface {
		GetBalance(ctx context.Context) (int64, error)
		Invalidate(principal models.Principal)
	}
	BalanceServiceImpl struct {
		backendClient clients.PanelBackendClient
		cache         *staleCache
	}
)

func NewBalanceService(c config.AppConfig, backendClient clients.PanelBackendClient) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		backendClient: backendClient,
		cache:         newStaleCache(c.BalanceTTL, c.CacheCleanupInterval),
	}
}

// GetBalance returns 0 paise without error when no identity is present, so
// unauthenticated rendering stays simple. Callers gate balance-dependent
// actions on authentication state, not on the zero value.
func (bs *BalanceServiceImpl) GetBalance(ctx context.Context) (int64, error) {
	principal := appContext.GetPrincipal(ctx)
	if principal == "" {
		return 0, nil
	}

	key := principal.String()
	if cached, found := bs.cache.Get(key); found {
		return cached.(int64), nil
	}

	gen := bs.cache.generation(key)
	balance, err := bs.backendClient.GetBalance(ctx)
	if err != nil {
		return 0, err
	}
	if !bs.cache.put(key, gen, balance) {
		logger.Log.Debug("discarding stale balance fetch", zap.String("principal", key))
	}
	return balance, nil
}

// Invalidate drops the snapshot after a mutation the caller initiated; the
// next read triggers an authoritative fetch. The local estimate is never
// decremented optimistically, the backend's deduction may differ from it.
func (bs *BalanceServiceImpl) Invalidate(principal models.Principal) {
	bs.cache.invalidate(principal.String())
}
