package service

import (
	"context"

	"github.com/smmboost/panel/internal/app/config"
	appContext "github.com/smmboost/panel/internal/app/context"
	"github.com/smmboost/panel/internal/app/models"
	"github.com/smmboost/panel/internal/app/service/clients"
)

type (
	// RoleService caches the backend's authorization probe. The cached role
	// only gates UI affordances and request routing; the backend re-checks
	// every privileged call regardless.
	RoleService interface {
		Role(ctx context.Context) (models.UserRole, error)
		IsAdmin(ctx context.Context) (bool, error)
	}
	RoleServiceImpl struct {
		backendClient clients.PanelBackendClient
		cache         *staleCache
	}
)

func NewRoleService(c config.AppConfig, backendClient clients.PanelBackendClient) *RoleServiceImpl {
	return &RoleServiceImpl{
		backendClient: backendClient,
		cache:         newStaleCache(c.RoleTTL, c.CacheCleanupInterval),
	}
}

func (rs *RoleServiceImpl) Role(ctx context.Context) (models.UserRole, error) {
	principal := appContext.GetPrincipal(ctx)
	if principal == "" {
		return models.RoleGuest, nil
	}

	key := principal.String()
	if cached, found := rs.cache.Get(key); found {
		return cached.(models.UserRole), nil
	}

	gen := rs.cache.generation(key)
	role, err := rs.backendClient.GetCallerUserRole(ctx)
	if err != nil {
		return models.RoleGuest, err
	}
	rs.cache.put(key, gen, role)
	return role, nil
}

func (rs *RoleServiceImpl) IsAdmin(ctx context.Context) (bool, error) {
	role, err := rs.Role(ctx)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}
